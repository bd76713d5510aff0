package detection

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ironsheep/loot-detect-mcp/internal/imaging"
)

// Template is one icon of the library, normalized to the canonical size.
type Template struct {
	// Name is the human-readable item name derived from the file name.
	Name string `json:"name"`

	// File is the base name of the source file.
	File string `json:"file"`

	// Color is the opaque color plane (A=255 everywhere).
	Color *image.NRGBA `json:"-"`

	// Mask holds the template opacity; 0 pixels never contribute to a score.
	Mask *image.Gray `json:"-"`
}

// Library is an ordered, read-only set of templates loaded from one
// directory. Order follows file names, which makes best-match tie breaking
// deterministic.
type Library struct {
	Dir       string     `json:"dir"`
	Size      int        `json:"size"`
	Templates []Template `json:"templates"`
}

// Len returns the number of templates.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Templates)
}

// Names returns the item names in library order.
func (l *Library) Names() []string {
	names := make([]string, 0, l.Len())
	for _, t := range l.Templates {
		names = append(names, t.Name)
	}
	return names
}

// LoadLibrary reads every image file in dir and normalizes it to
// size x size.
//
// Files that cannot be decoded are logged and skipped; one corrupt
// template never fails the whole library. An error is returned only when
// the directory itself cannot be read.
//
// # Normalization
//
//  1. The color channels are split from the alpha channel (sources without
//     alpha get a fully opaque mask)
//  2. The color plane is resized with an area-averaging box filter
//  3. The mask is resized with nearest-neighbour sampling
func LoadLibrary(dir string, size int, logger zerolog.Logger) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read template directory: %w", err)
	}

	lib := &Library{Dir: dir, Size: size}
	for _, entry := range entries {
		if entry.IsDir() || !imaging.IsImageFile(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		img, err := imaging.Load(path)
		if err != nil {
			logger.Warn().Err(err).Str("file", path).Msg("skipping unreadable template")
			continue
		}
		if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
			logger.Warn().Str("file", path).Msg("skipping empty template")
			continue
		}

		colors, mask := imaging.SplitAlpha(img)
		lib.Templates = append(lib.Templates, Template{
			Name:  ItemName(entry.Name()),
			File:  entry.Name(),
			Color: imaging.Canonicalize(colors, size),
			Mask:  imaging.ResizeMask(mask, size),
		})
	}

	logger.Debug().Str("dir", dir).Int("templates", len(lib.Templates)).Msg("template library loaded")
	return lib, nil
}

// minorWords stay lower-case inside item names ("Potion of Life").
var minorWords = map[string]bool{
	"a": true, "an": true, "and": true, "at": true, "by": true, "for": true,
	"from": true, "in": true, "of": true, "on": true, "or": true, "the": true,
	"to": true, "with": true,
}

// ItemName derives a display name from a template file name:
// the extension is dropped, underscores become spaces and every word is
// title-cased except minor words after the first.
//
//	potion_of_life.png              -> Potion of Life
//	WAND_OF_THE_FORGOTTEN_FOREST.png -> Wand of the Forgotten Forest
func ItemName(file string) string {
	base := filepath.Base(file)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	words := strings.Fields(strings.ReplaceAll(stem, "_", " "))

	caser := cases.Title(language.English)
	for i, w := range words {
		lower := strings.ToLower(w)
		if i > 0 && minorWords[lower] {
			words[i] = lower
			continue
		}
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// LibraryCache keeps loaded libraries across detection calls and reloads a
// directory when its listing changes.
//
// The signature of a directory covers the name, size and modification time
// of every image file, so adding, removing or overwriting a template all
// trigger a reload. Cached libraries are never mutated; a reload replaces
// the entry. LibraryCache is safe for concurrent use.
type LibraryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	signature string
	library   *Library
}

// NewLibraryCache creates an empty cache.
func NewLibraryCache() *LibraryCache {
	return &LibraryCache{entries: make(map[string]cacheEntry)}
}

// Get returns the library for dir at the given canonical size, loading or
// reloading it when the directory changed since the last call.
func (c *LibraryCache) Get(dir string, size int, logger zerolog.Logger) (*Library, error) {
	sig, err := dirSignature(dir)
	if err != nil {
		return nil, err
	}
	key := dir + "|" + strconv.Itoa(size)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && entry.signature == sig {
		return entry.library, nil
	}

	lib, err := LoadLibrary(dir, size, logger)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{signature: sig, library: lib}
	c.mu.Unlock()

	return lib, nil
}

// Clear drops every cached library.
func (c *LibraryCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

func dirSignature(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read template directory: %w", err)
	}

	var sb strings.Builder
	for _, entry := range entries {
		if entry.IsDir() || !imaging.IsImageFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		fmt.Fprintf(&sb, "%s:%d:%d;", entry.Name(), info.Size(), info.ModTime().UnixNano())
	}
	return sb.String(), nil
}

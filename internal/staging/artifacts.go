package staging

import (
	"context"
	"fmt"
	"path"
	"time"

	log "github.com/sirupsen/logrus"

	"sagafalabella/scraper/internal/domain"
)

// Artifacts reads and writes stage snapshots on a BlobStore.
type Artifacts struct {
	store    BlobStore
	paths    PathBuilder
	formats  map[Layer]Format
	location *time.Location
}

func NewArtifacts(store BlobStore, paths PathBuilder, formats map[Layer]Format, location *time.Location) *Artifacts {
	resolved := map[Layer]Format{
		LayerRaw:    LayerRaw.DefaultFormat(),
		LayerMaster: LayerMaster.DefaultFormat(),
	}
	for layer, format := range formats {
		if format != "" {
			resolved[layer] = format
		}
	}
	return &Artifacts{
		store:    store,
		paths:    paths,
		formats:  resolved,
		location: location,
	}
}

// Path returns where the layer snapshot of a run date lives.
func (a *Artifacts) Path(layer Layer, date string) string {
	return a.paths.Build(layer, date, a.formats[layer])
}

// Write encodes records in the layer's format and stores them, replacing any
// previous snapshot of the same date.
func (a *Artifacts) Write(ctx context.Context, layer Layer, date string, records []domain.ScrapedProduct) (string, error) {
	p := a.Path(layer, date)

	codec, err := NewCodec(a.formats[layer], a.location)
	if err != nil {
		return "", err
	}
	data, err := codec.Encode(records)
	if err != nil {
		return "", err
	}
	if err := a.store.Put(ctx, p, data); err != nil {
		return "", fmt.Errorf("failed to store artifact: %w", err)
	}

	log.Infof("💾 Stored %d records in %s (%d bytes)", len(records), p, len(data))
	return p, nil
}

// Read loads the layer snapshot of a run date.
func (a *Artifacts) Read(ctx context.Context, layer Layer, date string) ([]domain.ScrapedProduct, string, error) {
	p := a.Path(layer, date)
	records, err := a.ReadPath(ctx, p)
	return records, p, err
}

// ReadPath loads any artifact, picking the codec from its extension.
func (a *Artifacts) ReadPath(ctx context.Context, p string) ([]domain.ScrapedProduct, error) {
	format, err := FormatFromPath(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, p)
	}
	codec, err := NewCodec(format, a.location)
	if err != nil {
		return nil, err
	}

	data, err := a.store.Get(ctx, p)
	if err != nil {
		return nil, err
	}
	records, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", p, err)
	}

	log.Infof("📂 Loaded %d records from %s", len(records), p)
	return records, nil
}

// Exists reports whether p is present in the store.
func (a *Artifacts) Exists(ctx context.Context, p string) (bool, error) {
	paths, err := a.store.List(ctx, path.Dir(p))
	if err != nil {
		return false, err
	}
	for _, candidate := range paths {
		if candidate == p {
			return true, nil
		}
	}
	return false, nil
}

// List returns every snapshot stored for a layer.
func (a *Artifacts) List(ctx context.Context, layer Layer) ([]string, error) {
	return a.store.List(ctx, a.paths.Dir(layer))
}

func (a *Artifacts) Delete(ctx context.Context, p string) error {
	if err := a.store.Delete(ctx, p); err != nil {
		return err
	}
	log.Infof("🗑️ Deleted %s", p)
	return nil
}

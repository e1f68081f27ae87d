package element

import (
	"context"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"ecobuild/internal/domain/material"
	"ecobuild/internal/pkg/apperrors"
	"ecobuild/internal/pkg/logger"
)

// BatchSize bounds how many elements go into one upsert statement. Keeps
// peak memory and transaction log size flat regardless of model size.
const BatchSize = 50

// FractionTolerance is the allowed deviation when layer fractions are
// expected to sum to 1.
const FractionTolerance = 1e-4

// Writer persists parsed elements with their material references resolved
// through the reconciler's name map.
type Writer struct {
	repo Repository
	log  *logger.Logger
}

func NewWriter(repo Repository, log *logger.Logger) *Writer {
	return &Writer{repo: repo, log: log}
}

// WriteElements upserts every parsed element in batches of BatchSize.
// A material name missing from the reconciled map drops that layer with a
// warning; a fraction-sum violation rejects the whole write. Returns the
// number of elements upserted or modified.
func (w *Writer) WriteElements(ctx context.Context, tx *gorm.DB, projectID int64, uploadID string, parsed []ParsedElement, materials map[string]*material.Material) (int, error) {
	const op = "element.WriteElements"

	total := int64(0)
	batch := make([]*Element, 0, BatchSize)
	now := time.Now()

	for i := range parsed {
		p := &parsed[i]
		if p.ExternalID == "" {
			return 0, apperrors.Validation(op, "element", ErrEmptyGUID)
		}

		layers, err := w.buildLayers(projectID, p, materials)
		if err != nil {
			return 0, apperrors.Validation(op, "element", err)
		}

		uid := uploadID
		batch = append(batch, &Element{
			ProjectID:   projectID,
			GUID:        p.ExternalID,
			Name:        p.Name,
			TypeTag:     p.Type,
			Volume:      p.Volume,
			LoadBearing: p.Properties.LoadBearing,
			IsExternal:  p.Properties.IsExternal,
			Layers:      layers,
			UploadID:    &uid,
			CreatedAt:   now,
			UpdatedAt:   now,
		})

		if len(batch) == BatchSize {
			n, err := w.repo.UpsertBatch(ctx, tx, batch)
			if err != nil {
				return 0, apperrors.Database(op, "element", err)
			}
			total += n
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		n, err := w.repo.UpsertBatch(ctx, tx, batch)
		if err != nil {
			return 0, apperrors.Database(op, "element", err)
		}
		total += n
	}

	return int(total), nil
}

// buildLayers resolves both reference styles into one layer list.
func (w *Writer) buildLayers(projectID int64, p *ParsedElement, materials map[string]*material.Material) ([]MaterialLayer, error) {
	layers := make([]MaterialLayer, 0, len(p.Materials))

	for _, ref := range p.Materials {
		if ref.Volume < 0 {
			return nil, fmt.Errorf("%w: material %q on element %q", ErrNegativeVolume, ref.Name, p.ExternalID)
		}
		m, ok := materials[ref.Name]
		if !ok {
			w.log.Warn("dropping layer with unreconciled material",
				"project_id", projectID, "guid", p.ExternalID, "name", ref.Name)
			continue
		}
		id := m.ID
		layers = append(layers, MaterialLayer{
			MaterialID:   &id,
			MaterialName: m.Name,
			Volume:       ref.Volume,
		})
	}

	for _, group := range p.LayerSets {
		if len(group.Layers) == 0 {
			continue
		}
		evenSplit := p.Volume / float64(len(group.Layers))
		for _, l := range group.Layers {
			volume := evenSplit
			if l.Volume != nil {
				if *l.Volume < 0 {
					return nil, fmt.Errorf("%w: material %q on element %q", ErrNegativeVolume, l.MaterialName, p.ExternalID)
				}
				volume = *l.Volume
			}
			m, ok := materials[l.MaterialName]
			if !ok {
				w.log.Warn("dropping layer with unreconciled material",
					"project_id", projectID, "guid", p.ExternalID, "name", l.MaterialName)
				continue
			}
			id := m.ID
			layers = append(layers, MaterialLayer{
				MaterialID:   &id,
				MaterialName: m.Name,
				Volume:       volume,
				Fraction:     l.Fraction,
				Thickness:    l.Thickness,
			})
		}
	}

	if err := checkFractions(p.ExternalID, layers); err != nil {
		return nil, err
	}
	return layers, nil
}

// checkFractions enforces the sum-to-1 invariant whenever any layer
// carries a fraction. Enforced here for every write path, not just the
// layered one.
func checkFractions(guid string, layers []MaterialLayer) error {
	sum := 0.0
	present := false
	for i := range layers {
		if layers[i].Fraction != nil {
			present = true
			sum += *layers[i].Fraction
		}
	}
	if present && math.Abs(sum-1) > FractionTolerance {
		return fmt.Errorf("%w: element %q sums to %g", ErrFractionSum, guid, sum)
	}
	return nil
}

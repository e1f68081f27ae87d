package impact

import (
	"context"

	"gorm.io/gorm"

	"ecobuild/internal/domain/element"
	"ecobuild/internal/domain/material"
	"ecobuild/internal/pkg/apperrors"
)

// Aggregator computes the environmental indicator triple as a weighted
// sum over material layers: Σ volume × density × factor, the same formula
// for GWP, UBP and PENRE. It is a query-time reduction over persisted
// state, so reads always reflect the latest match state.
type Aggregator struct {
	elements  element.Repository
	materials material.Repository
}

func NewAggregator(elements element.Repository, materials material.Repository) *Aggregator {
	return &Aggregator{elements: elements, materials: materials}
}

// ElementIndicators returns the indicator totals for one element.
func (a *Aggregator) ElementIndicators(ctx context.Context, projectID, elementID int64) (*element.IndicatorSet, error) {
	const op = "impact.ElementIndicators"

	el, err := a.elements.GetByID(ctx, projectID, elementID)
	if err == element.ErrElementNotFound {
		return nil, apperrors.NotFound(op, "element", err)
	}
	if err != nil {
		return nil, apperrors.Database(op, "element", err)
	}

	mats, err := a.materialsForElements(ctx, nil, projectID, []*element.Element{el})
	if err != nil {
		return nil, apperrors.Database(op, "material", err)
	}

	total := element.IndicatorSet{}
	accumulate(&total, el, mats)
	return &total, nil
}

// ProjectIndicators returns the indicator totals across every element in
// the project.
func (a *Aggregator) ProjectIndicators(ctx context.Context, projectID int64) (*element.IndicatorSet, error) {
	const op = "impact.ProjectIndicators"

	els, err := a.elements.ListByProject(ctx, nil, projectID)
	if err != nil {
		return nil, apperrors.Database(op, "element", err)
	}

	mats, err := a.materialsForElements(ctx, nil, projectID, els)
	if err != nil {
		return nil, apperrors.Database(op, "material", err)
	}

	total := element.IndicatorSet{}
	for _, el := range els {
		accumulate(&total, el, mats)
	}
	return &total, nil
}

// RecomputeLayerBundles refreshes the pre-computed per-layer indicator
// bundles for a whole project. Runs as the last step of an ingestion,
// inside its unit of work, after the match phase has settled the factors.
func (a *Aggregator) RecomputeLayerBundles(ctx context.Context, tx *gorm.DB, projectID int64) error {
	const op = "impact.RecomputeLayerBundles"

	els, err := a.elements.ListByProject(ctx, tx, projectID)
	if err != nil {
		return apperrors.Database(op, "element", err)
	}
	mats, err := a.materialsForElements(ctx, tx, projectID, els)
	if err != nil {
		return apperrors.Database(op, "material", err)
	}

	for _, el := range els {
		changed := false
		for i := range el.Layers {
			bundle := layerIndicators(&el.Layers[i], mats)
			if el.Layers[i].Indicators == nil || *el.Layers[i].Indicators != bundle {
				el.Layers[i].Indicators = &bundle
				changed = true
			}
		}
		if !changed {
			continue
		}
		if err := a.elements.UpdateLayers(ctx, tx, el.ID, el.Layers); err != nil {
			return apperrors.Database(op, "element", err)
		}
	}
	return nil
}

func (a *Aggregator) materialsForElements(ctx context.Context, tx *gorm.DB, projectID int64, els []*element.Element) (map[int64]*material.Material, error) {
	idSet := map[int64]struct{}{}
	for _, el := range els {
		for i := range el.Layers {
			if el.Layers[i].MaterialID != nil {
				idSet[*el.Layers[i].MaterialID] = struct{}{}
			}
		}
	}
	if len(idSet) == 0 {
		return map[int64]*material.Material{}, nil
	}
	ids := make([]int64, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	rows, err := a.materials.FindByIDs(ctx, tx, projectID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*material.Material, len(rows))
	for _, m := range rows {
		byID[m.ID] = m
	}
	return byID, nil
}

func accumulate(total *element.IndicatorSet, el *element.Element, mats map[int64]*material.Material) {
	for i := range el.Layers {
		bundle := layerIndicators(&el.Layers[i], mats)
		total.GWP += bundle.GWP
		total.UBP += bundle.UBP
		total.PENRE += bundle.PENRE
	}
}

// layerIndicators applies the weighted-sum formula for one layer. Missing
// material, density or factor contributes 0: partial data under-reports,
// it never fails.
func layerIndicators(layer *element.MaterialLayer, mats map[int64]*material.Material) element.IndicatorSet {
	if layer.MaterialID == nil {
		return element.IndicatorSet{}
	}
	m, ok := mats[*layer.MaterialID]
	if !ok {
		return element.IndicatorSet{}
	}
	mass := layer.Volume * deref(m.Density)
	return element.IndicatorSet{
		GWP:   mass * deref(m.GWP),
		UBP:   mass * deref(m.UBP),
		PENRE: mass * deref(m.PENRE),
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

package element

// ParsedElement is one element record as delivered by the building-model
// producer. Materials may come as a flat list with volumes, as a layered
// assembly, or both.
type ParsedElement struct {
	ExternalID string              `json:"externalId" binding:"required"`
	Name       string              `json:"name"`
	Type       string              `json:"type"`
	Volume     float64             `json:"volume"`
	Properties ParsedProperties    `json:"properties"`
	Materials  []ParsedMaterialRef `json:"materials,omitempty"`
	LayerSets  []ParsedLayerGroup  `json:"materialLayerGroups,omitempty"`
}

type ParsedProperties struct {
	LoadBearing bool `json:"loadBearing"`
	IsExternal  bool `json:"isExternal"`
}

type ParsedMaterialRef struct {
	Name   string  `json:"name"`
	Volume float64 `json:"volume"`
}

type ParsedLayerGroup struct {
	Layers []ParsedLayer `json:"layers"`
}

// ParsedLayer may omit Volume; the writer then assigns an even split of
// the element volume across the group's layers.
type ParsedLayer struct {
	MaterialName string   `json:"materialName"`
	Volume       *float64 `json:"volume,omitempty"`
	Fraction     *float64 `json:"fraction,omitempty"`
	Thickness    *float64 `json:"thickness,omitempty"`
}

// MaterialNames collects every material name the element references,
// trimmed producer-side, across both reference styles.
func (p *ParsedElement) MaterialNames() []string {
	names := make([]string, 0, len(p.Materials))
	for _, m := range p.Materials {
		names = append(names, m.Name)
	}
	for _, g := range p.LayerSets {
		for _, l := range g.Layers {
			names = append(names, l.MaterialName)
		}
	}
	return names
}

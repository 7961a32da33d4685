package models

// Preset is a named group of channel names that the frontend can add to a
// plot in one action.
type Preset struct {
	Name     string   `yaml:"name" json:"name"`
	Channels []string `yaml:"channels" json:"channels"`
}

// PresetList is the root of a presets YAML document.
type PresetList struct {
	Presets []Preset `yaml:"presets" json:"presets"`
}

package config

// File represents the structure of the .taskhistory.yaml configuration file.
type File struct {
	Version     string            `yaml:"version"`
	Root        string            `yaml:"root"`
	Cache       string            `yaml:"cache"`
	Scope       string            `yaml:"scope"`
	Mode        string            `yaml:"mode"`
	Fingerprint map[string]string `yaml:"fingerprint"`
}

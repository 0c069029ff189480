package app

import (
	"os"
	"path/filepath"
)

// Paths holds all resolved filesystem paths for the .glossa/ project directory.
type Paths struct {
	Root   string // .glossa/
	DB     string // .glossa/glossa.db
	Config string // .glossa/config.yaml

	RunDir   string // .glossa/run/
	PIDFile  string // .glossa/run/serve.pid
	PortFile string // .glossa/run/http.port
}

// NewPaths constructs all resolved paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, ".glossa")
	return &Paths{
		Root:   root,
		DB:     filepath.Join(root, "glossa.db"),
		Config: filepath.Join(root, "config.yaml"),

		RunDir:   filepath.Join(root, "run"),
		PIDFile:  filepath.Join(root, "run", "serve.pid"),
		PortFile: filepath.Join(root, "run", "http.port"),
	}
}

// EnsureDirs creates all subdirectories under .glossa/. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.RunDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// CleanEphemeral removes ephemeral runtime files (PID file and port file).
// Called on clean server shutdown.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PIDFile)
	os.Remove(p.PortFile)
}

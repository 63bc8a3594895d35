package scenarios

import "embed"

//go:embed *.tengo
var FS embed.FS

func Load(name string) ([]byte, error) {
	return FS.ReadFile(name)
}

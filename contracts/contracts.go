/*
Package contracts provides access to compiled bridge contract artifacts.

Artifacts are produced by NeoGo compiler:

	neo-go contract compile -i contracts/bridge -c contracts/bridge/config.yml \
		-m contracts/bridge/manifest.json -o contracts/bridge/contract.nef
*/
package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
)

const (
	// BridgeDir is a directory of the bridge contract relative to the
	// repository root.
	BridgeDir = "bridge"

	nefName      = "contract.nef"
	manifestName = "manifest.json"
)

// Contract groups information about Neo contract stored in the current package.
type Contract struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

var (
	errInvalidNEF      = errors.New("invalid NEF")
	errInvalidManifest = errors.New("invalid manifest")
)

// GetBridge reads compiled bridge contract from the given contracts root
// directory (the one containing 'bridge' subdirectory).
func GetBridge(root string) (Contract, error) {
	res, err := read(os.DirFS(root), []string{BridgeDir})
	if err != nil {
		return Contract{}, err
	}

	return res[0], nil
}

// ReadDir reads compiled contract placed right in the given directory.
func ReadDir(dir string) (Contract, error) {
	res, err := read(os.DirFS(dir), []string{"."})
	if err != nil {
		return Contract{}, err
	}

	return res[0], nil
}

// read loads contracts from the given directories of the source fs.FS.
func read(_fs fs.FS, dirs []string) ([]Contract, error) {
	var res = make([]Contract, 0, len(dirs))

	for i := range dirs {
		c, err := readContractFromDir(_fs, dirs[i])
		if err != nil {
			return nil, fmt.Errorf("read contract %s: %w", dirs[i], err)
		}

		res = append(res, c)
	}

	return res, nil
}

func readContractFromDir(_fs fs.FS, dir string) (Contract, error) {
	var c Contract

	// fs.FS uses "/" even on Windows, so filepath.Join() is not applicable.
	fNEF, err := _fs.Open(path.Join(dir, nefName))
	if err != nil {
		return c, fmt.Errorf("open NEF: %w", err)
	}
	defer fNEF.Close()

	fManifest, err := _fs.Open(path.Join(dir, manifestName))
	if err != nil {
		return c, fmt.Errorf("open manifest: %w", err)
	}
	defer fManifest.Close()

	bReader := io.NewBinReaderFromIO(fNEF)
	c.NEF.DecodeBinary(bReader)
	if bReader.Err != nil {
		return c, fmt.Errorf("%w: %w", errInvalidNEF, bReader.Err)
	}

	err = json.NewDecoder(fManifest).Decode(&c.Manifest)
	if err != nil {
		return c, fmt.Errorf("%w: %w", errInvalidManifest, err)
	}

	return c, nil
}

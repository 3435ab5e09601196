package crypto

import (
	"io"
	"os"
	"path"

	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/blake2b"
)

// HashFile returns the base58-encoded BLAKE2b-512 digest of a file. The run
// ledger stores this for each converted archive so identical re-runs can be
// recognised.
func HashFile(filePath string) (string, error) {
	file, err := os.Open(path.Clean(filePath))

	if err != nil {
		return "", err
	}

	defer file.Close()

	hash, err := blake2b.New512([]byte{})

	if err != nil {
		return "", err
	}

	_, err = io.Copy(hash, file)

	if err != nil {
		return "", err
	}

	// 64 bytes of BLAKE2b data come out at 87 to 88 characters of Base-58,
	// about a third shorter than hex
	return base58.Encode(hash.Sum(nil)), nil
}

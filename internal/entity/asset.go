package entity

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/gosimple/slug"
)

// Asset is a uniquely identified, non-subdividable digital item minted by the
// asset registry. Handle is its ledger identity; exactly one unit exists
// while the asset is alive.
type Asset struct {
	Handle   string `json:"handle"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Uri      string `json:"uri"`
	Owner    string `json:"owner"`
	Listed   bool   `json:"listed"`
	Burned   bool   `json:"burned"`
	TxID     string `json:"txId"`

	HasMetadata   bool        `json:"hasMetadata"`
	MetadataError string      `json:"metadataError,omitempty"`
	Metadata      interface{} `json:"metadata,omitempty"`
}

func (a Asset) Slug() string {
	return CreateAssetSlug(a.Handle)
}

func CreateAssetSlug(handle string) string {
	return slug.Make(fmt.Sprintf("asset-%s", handle))
}

// MetadataUri resolves the descriptive metadata location, rewriting ipfs
// content ids to a gateway-fetchable form.
func (a Asset) MetadataUri() (string, error) {
	metadataUri := a.Uri

	if ipfs := getIpfs(metadataUri); ipfs != "" {
		metadataUri = ipfs
	}

	if len(metadataUri) < 4 || metadataUri[:4] != "http" && metadataUri[:4] != "ipfs" {
		return "", errors.New("invalid metadata uri")
	}

	return metadataUri, nil
}

func getIpfs(metadataUri string) string {
	if len(metadataUri) < 7 {
		return ""
	}

	if metadataUri[:7] == "ipfs://" {
		return metadataUri
	}

	re := regexp.MustCompile("(Qm[1-9A-HJ-NP-Za-km-z]{44})")
	parts := re.FindStringSubmatch(metadataUri)
	if len(parts) == 2 {
		return "ipfs://" + parts[1]
	}

	return ""
}

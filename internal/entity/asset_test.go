package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadataUri(t *testing.T) {
	tests := map[string]struct {
		uri      string
		expected string
		wantErr  bool
	}{
		"http passthrough": {
			uri:      "https://example.com/meta/1.json",
			expected: "https://example.com/meta/1.json",
		},
		"ipfs passthrough": {
			uri:      "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG",
			expected: "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG",
		},
		"gateway url rewritten to ipfs": {
			uri:      "https://gateway.pinata.cloud/ipfs/QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG",
			expected: "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG",
		},
		"empty": {
			uri:     "",
			wantErr: true,
		},
		"garbage": {
			uri:     "ftp://nope",
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			uri, err := Asset{Uri: tc.uri}.MetadataUri()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, uri)
		})
	}
}

func TestListingSlug(t *testing.T) {
	listing := Listing{Asset: "0xAbCd"}
	assert.Equal(t, "listing-0xabcd", listing.Slug())
}

package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/openmint/nft-marketplace/internal/config"
	"github.com/openmint/nft-marketplace/internal/entity"
)

type Service interface {
	FetchMetadata(asset entity.Asset) (map[string]interface{}, error)
}

type service struct {
	client *retryablehttp.Client
}

func NewMetadataService(client *retryablehttp.Client) Service {
	return service{client}
}

func (s service) FetchMetadata(asset entity.Asset) (map[string]interface{}, error) {
	metadataUri, err := asset.MetadataUri()
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(metadataUri, "ipfs://") {
		return s.fetchIpfs(metadataUri)
	}

	return s.fetch(metadataUri)
}

// fetchIpfs walks the configured gateways until one serves the content id.
func (s service) fetchIpfs(metadataUri string) (map[string]interface{}, error) {
	cid := strings.TrimPrefix(metadataUri, "ipfs://")

	var lastErr error
	for _, host := range config.Get().IpfsHosts {
		md, err := s.fetch(fmt.Sprintf("%s/ipfs/%s", host, cid))
		if err == nil {
			return md, nil
		}
		lastErr = err
	}

	return nil, lastErr
}

func (s service) fetch(uri string) (map[string]interface{}, error) {
	resp, err := s.client.Get(uri)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, errors.New(resp.Status)
	}

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp.Body)
	if err != nil {
		return nil, err
	}

	var md map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &md); err != nil {
		return nil, err
	}

	return md, nil
}

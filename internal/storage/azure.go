package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"

	"speechcraft/internal/domain"
)

var _ domain.AudioStore = (*AzureStore)(nil)

// AzureStore serves audio blobs from Azure Blob Storage using shared-key
// credentials to produce time-limited SAS URLs.
type AzureStore struct {
	client *azblob.Client
}

// NewAzureStore creates an AzureStore for the given storage account.
func NewAzureStore(accountName, accountKey string) (*AzureStore, error) {
	if accountName == "" || accountKey == "" {
		return nil, fmt.Errorf("Azure config is incomplete")
	}

	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("create shared key credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}

	return &AzureStore{client: client}, nil
}

// SignedURL generates a SAS GET URL for an Azure blob.
func (s *AzureStore) SignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	container, key, err := parseAzurePath(path)
	if err != nil {
		return "", err
	}

	blobClient := s.client.ServiceClient().NewContainerClient(container).NewBlobClient(key)
	sasURL, err := blobClient.GetSASURL(sas.BlobPermissions{Read: true}, time.Now().Add(expiry), nil)
	if err != nil {
		return "", fmt.Errorf("generate SAS URL for %q: %w", path, err)
	}
	return sasURL, nil
}

// Delete removes an Azure blob.
func (s *AzureStore) Delete(ctx context.Context, path string) error {
	container, key, err := parseAzurePath(path)
	if err != nil {
		return err
	}

	if _, err := s.client.DeleteBlob(ctx, container, key, nil); err != nil {
		return fmt.Errorf("delete Azure blob %q: %w", path, err)
	}
	return nil
}

// parseAzurePath extracts container and key from an Azure storage URI.
//
// Supported formats:
//
//	az://container/path/to/file
//	abfss://container@account.dfs.core.windows.net/path/to/file
func parseAzurePath(path string) (container, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("parse Azure path %q: %w", path, err)
	}

	switch u.Scheme {
	case "az":
		container = u.Host
		key = strings.TrimPrefix(u.Path, "/")

	case "abfss":
		// url.Parse treats "container" as userinfo before the @ and the
		// account host as host.
		if u.User == nil {
			return "", "", fmt.Errorf("abfss path %q missing container@account component", path)
		}
		container = u.User.Username()
		key = strings.TrimPrefix(u.Path, "/")

	default:
		return "", "", fmt.Errorf("unrecognized Azure path scheme %q in %q", u.Scheme, path)
	}

	if container == "" {
		return "", "", fmt.Errorf("empty container in Azure path %q", path)
	}
	if key == "" {
		return "", "", fmt.Errorf("empty key in Azure path %q", path)
	}

	return container, key, nil
}

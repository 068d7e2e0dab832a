package datreader

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureBlob serves ranges from an Azure blob with scoped
// DownloadStream calls.
type AzureBlob struct {
	client    *azblob.Client
	container string
	blob      string
}

func NewAzureBlob(client *azblob.Client, container, blob string) *AzureBlob {
	return &AzureBlob{client: client, container: container, blob: blob}
}

func (r *AzureBlob) ReadRange(ctx context.Context, offset uint32, length int) ([]byte, error) {
	resp, err := r.client.DownloadStream(ctx, r.container, r.blob, &azblob.DownloadStreamOptions{
		Range: azblob.HTTPRange{Offset: int64(offset), Count: int64(length)},
	})
	if err != nil {
		switch {
		case bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound):
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, r.container, r.blob)
		case bloberror.HasCode(err, bloberror.InvalidRange):
			return nil, fmt.Errorf("%w: bytes %d+%d of %s/%s", ErrRangeUnavailable, offset, length, r.container, r.blob)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	buf := make([]byte, length)
	if _, err := io.ReadFull(resp.Body, buf); err != nil {
		return nil, fmt.Errorf("%w: bytes %d+%d of %s/%s: %v", ErrShortRead, offset, length, r.container, r.blob, err)
	}
	return buf, nil
}

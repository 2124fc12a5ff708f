package driving

import (
	"context"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
)

// RemoteLister reads the remote account's conversion records. It is the
// list command's view onto whatever connector can enumerate documents.
type RemoteLister interface {
	// ListDocuments fetches one page of documents matching the query.
	ListDocuments(ctx context.Context, query domain.ListQuery) (domain.DocumentPage, error)
}

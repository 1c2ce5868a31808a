package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/require"
)

const listPage = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
<Name>backups</Name><Prefix>snap/</Prefix><KeyCount>%d</KeyCount><MaxKeys>1000</MaxKeys>
<IsTruncated>%t</IsTruncated><NextContinuationToken>%s</NextContinuationToken>%s
</ListBucketResult>`

func listContents(keys ...string) string {
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><LastModified>2024-01-01T00:00:00.000Z</LastModified><Size>1</Size></Contents>", k)
	}
	return b.String()
}

func newTestMinIO(t *testing.T, h http.HandlerFunc) *MinIOStorage {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	mc, err := minio.New(strings.TrimPrefix(srv.URL, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4("key", "secret", ""),
		Region: "us-east-1",
	})
	require.NoError(t, err)
	return &MinIOStorage{client: mc, bucket: "backups"}
}

func TestMinIOListSorted(t *testing.T) {
	s := newTestMinIO(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprintf(w, listPage, 3, false, "", listContents("snap/c", "snap/a", "snap/b"))
	})

	keys, err := s.List(context.Background(), "snap/")
	require.NoError(t, err)
	require.Equal(t, []string{"snap/a", "snap/b", "snap/c"}, keys)
}

func TestMinIOListStopsOnError(t *testing.T) {
	var calls atomic.Int32
	s := newTestMinIO(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Content-Type", "application/xml")
			fmt.Fprintf(w, listPage, 2, true, "next", listContents("snap/a", "snap/b"))
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
	})

	keys, err := s.List(context.Background(), "snap/")
	require.Error(t, err)
	require.ErrorContains(t, err, "minio list snap/")
	require.Nil(t, keys)
	require.EqualValues(t, 2, calls.Load())
}

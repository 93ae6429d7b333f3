package staging

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"

	"sagafalabella/scraper/internal/config"
	"sagafalabella/scraper/internal/domain"
)

// HDFSStore keeps artifacts in HDFS through the WebHDFS REST API.
type HDFSStore struct {
	baseURL    string
	user       string
	httpClient *resty.Client
}

type webHDFSLocation struct {
	Location string `json:"Location"`
}

type webHDFSListing struct {
	FileStatuses struct {
		FileStatus []struct {
			PathSuffix string `json:"pathSuffix"`
			Type       string `json:"type"`
		} `json:"FileStatus"`
	} `json:"FileStatuses"`
}

func NewHDFSStore(cfg config.HDFSConfig) *HDFSStore {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &HDFSStore{
		baseURL:    strings.TrimRight(cfg.URL, "/") + "/webhdfs/v1",
		user:       cfg.User,
		httpClient: resty.New().SetTimeout(timeout),
	}
}

func (s *HDFSStore) endpoint(p string) string {
	return s.baseURL + path.Join("/", p)
}

func (s *HDFSStore) request(ctx context.Context, op string) *resty.Request {
	req := s.httpClient.R().
		SetContext(ctx).
		SetQueryParam("op", op)
	if s.user != "" {
		req.SetQueryParam("user.name", s.user)
	}
	return req
}

// Put creates or overwrites a file. The namenode answers with the datanode
// location the bytes have to be sent to.
func (s *HDFSStore) Put(ctx context.Context, p string, data []byte) error {
	resp, err := s.request(ctx, "CREATE").
		SetQueryParam("overwrite", "true").
		SetQueryParam("noredirect", "true").
		Put(s.endpoint(p))
	if err != nil {
		return fmt.Errorf("webhdfs create %s: %w", p, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("webhdfs create %s: unexpected status %s", p, resp.Status())
	}

	var location webHDFSLocation
	if err := json.Unmarshal([]byte(resp.String()), &location); err != nil || location.Location == "" {
		return fmt.Errorf("webhdfs create %s: missing datanode location", p)
	}

	resp, err = s.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(data).
		Put(location.Location)
	if err != nil {
		return fmt.Errorf("webhdfs write %s: %w", p, err)
	}
	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("webhdfs write %s: unexpected status %s", p, resp.Status())
	}

	log.Debugf("📦 Wrote %d bytes to hdfs://%s", len(data), p)
	return nil
}

func (s *HDFSStore) Get(ctx context.Context, p string) ([]byte, error) {
	resp, err := s.request(ctx, "OPEN").Get(s.endpoint(p))
	if err != nil {
		return nil, fmt.Errorf("webhdfs open %s: %w", p, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, p)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("webhdfs open %s: unexpected status %s", p, resp.Status())
	}
	return resp.Bytes(), nil
}

func (s *HDFSStore) List(ctx context.Context, dir string) ([]string, error) {
	resp, err := s.request(ctx, "LISTSTATUS").Get(s.endpoint(dir))
	if err != nil {
		return nil, fmt.Errorf("webhdfs list %s: %w", dir, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("webhdfs list %s: unexpected status %s", dir, resp.Status())
	}

	var listing webHDFSListing
	if err := json.Unmarshal([]byte(resp.String()), &listing); err != nil {
		return nil, fmt.Errorf("webhdfs list %s: %w", dir, err)
	}

	var paths []string
	for _, status := range listing.FileStatuses.FileStatus {
		if status.Type != "FILE" {
			continue
		}
		paths = append(paths, path.Join(dir, status.PathSuffix))
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *HDFSStore) Delete(ctx context.Context, p string) error {
	resp, err := s.request(ctx, "DELETE").Delete(s.endpoint(p))
	if err != nil {
		return fmt.Errorf("webhdfs delete %s: %w", p, err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNotFound {
		return fmt.Errorf("webhdfs delete %s: unexpected status %s", p, resp.Status())
	}
	return nil
}

package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/go-containerregistry/pkg/crane"
)

// VersionsPageSize is the number of tags per ListVersions page
const VersionsPageSize = 10

// TagLister lists the tags of an image repository
type TagLister interface {
	ListTags(ctx context.Context, repo string) ([]string, error)
}

// RegistryTags lists tags from the image registry
type RegistryTags struct{}

func (RegistryTags) ListTags(ctx context.Context, repo string) ([]string, error) {
	tags, err := crane.ListTags(repo, crane.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list tags of %s: %w", repo, err)
	}
	return tags, nil
}

// VersionsResult is the ListVersions answer. Images holds one page of tags
// as a JSON document.
type VersionsResult struct {
	Org    string `json:"org"`
	Repo   string `json:"repo"`
	Images string `json:"images"`
}

type tagPage struct {
	Count   int      `json:"count"`
	Page    int      `json:"page"`
	Results []tagRef `json:"results"`
}

type tagRef struct {
	Name string `json:"name"`
}

// pageTags sorts tags newest-looking first and returns page (1-based)
func pageTags(tags []string, page int) tagPage {
	if page < 1 {
		page = 1
	}
	sorted := append([]string(nil), tags...)
	sort.Sort(sort.Reverse(sort.StringSlice(sorted)))

	out := tagPage{Count: len(sorted), Page: page, Results: []tagRef{}}
	// compare pages rather than offsets so huge pages cannot overflow
	if page-1 >= (len(sorted)+VersionsPageSize-1)/VersionsPageSize {
		return out
	}
	start := (page - 1) * VersionsPageSize
	end := min(start+VersionsPageSize, len(sorted))
	for _, t := range sorted[start:end] {
		out.Results = append(out.Results, tagRef{Name: t})
	}
	return out
}

func encodeTagPage(p tagPage) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

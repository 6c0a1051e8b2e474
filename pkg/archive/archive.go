// Package archive maintains a local mirror of the ThermoML Archive: it
// resolves the current archive release from the NIST NERDm repository
// metadata, downloads the tarball, extracts it safely, and caches the
// release info alongside the XML files.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// FallbackArchiveURL is used when the repository metadata does not
	// name a tarball.
	FallbackArchiveURL   = "https://data.nist.gov/od/ds/mds2-2422/ThermoML.v2020-09-30.tgz"
	FallbackVersion      = "v2020-09-30"
	FallbackRevisionDate = "2020-09-30"

	// DefaultMetadataURL serves the archive's NERDm record.
	DefaultMetadataURL = "https://data.nist.gov/od/id/ark:/88434/mds2-2422?format=nerdm"

	// EnvPath overrides the local mirror location.
	EnvPath = "THERMOML_PATH"
	// EnvArchiveURL, EnvVersion and EnvRevisionDate override release
	// resolution, bypassing the metadata fetch.
	EnvArchiveURL   = "THERMOML_ARCHIVE_URL"
	EnvVersion      = "THERMOML_ARCHIVE_VERSION"
	EnvRevisionDate = "THERMOML_ARCHIVE_REVISION_DATE"

	infoFileName = "archive_info.json"
)

// DefaultPath returns the local mirror location: $THERMOML_PATH, or
// ~/.thermoml.
func DefaultPath() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".thermoml"
	}
	return filepath.Join(home, ".thermoml")
}

// Info is the cached release record of the local mirror.
type Info struct {
	ArchiveURL   string `json:"archive_url"`
	Version      string `json:"version"`
	RevisionDate string `json:"revision_date"`
	Title        string `json:"title,omitempty"`
	Retrieved    string `json:"retrieved"`
}

// Updater syncs the local mirror.
type Updater struct {
	Path        string
	MetadataURL string
	Client      *http.Client

	log *zap.SugaredLogger
}

// NewUpdater returns an Updater for the mirror at path. A nil log means
// silent operation.
func NewUpdater(path string, log *zap.SugaredLogger) *Updater {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Updater{
		Path:        path,
		MetadataURL: DefaultMetadataURL,
		Client:      &http.Client{Timeout: 5 * time.Minute},
		log:         log,
	}
}

// Update brings the local mirror up to date. When the cached release version
// matches the resolved one and XML files are present, the download is
// skipped.
func (u *Updater) Update(ctx context.Context) error {
	if err := os.MkdirAll(u.Path, 0o755); err != nil {
		return fmt.Errorf("create mirror dir: %w", err)
	}

	info := u.resolve(ctx)

	if cached, err := LoadInfo(u.Path); err == nil && cached.Version == info.Version {
		if files, _ := ListXMLFiles(u.Path, ""); len(files) > 0 {
			u.log.Infow("archive up to date", "version", info.Version, "files", len(files))
			return nil
		}
	}

	u.log.Infow("downloading archive", "url", info.ArchiveURL, "version", info.Version)
	tmp, err := u.download(ctx, info.ArchiveURL)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if err := extractArchive(tmp, u.Path); err != nil {
		return err
	}

	info.Retrieved = time.Now().UTC().Format(time.RFC3339)
	if err := writeInfo(u.Path, info); err != nil {
		return err
	}
	u.log.Infow("archive updated", "version", info.Version, "path", u.Path)
	return nil
}

// resolve determines the release to mirror: environment overrides first,
// then the NERDm repository metadata, then static fallbacks. Resolution is
// best-effort; it always yields a usable Info.
func (u *Updater) resolve(ctx context.Context) Info {
	info := Info{
		ArchiveURL:   os.Getenv(EnvArchiveURL),
		Version:      os.Getenv(EnvVersion),
		RevisionDate: os.Getenv(EnvRevisionDate),
	}
	if info.ArchiveURL != "" && info.Version != "" && info.RevisionDate != "" {
		return info
	}

	if meta, err := u.fetchMetadata(ctx); err != nil {
		u.log.Warnw("could not fetch repository metadata", "error", err)
	} else {
		if info.Version == "" {
			info.Version, _ = meta["version"].(string)
		}
		if info.RevisionDate == "" {
			info.RevisionDate = revisionDate(meta)
		}
		if info.ArchiveURL == "" {
			info.ArchiveURL = tarballURL(meta)
		}
		info.Title, _ = meta["title"].(string)
	}

	if info.ArchiveURL == "" {
		info.ArchiveURL = FallbackArchiveURL
	}
	if info.Version == "" {
		info.Version = FallbackVersion
	}
	if info.RevisionDate == "" {
		info.RevisionDate = FallbackRevisionDate
	}
	return info
}

func (u *Updater) fetchMetadata(ctx context.Context) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.MetadataURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := u.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata fetch returned %s", resp.Status)
	}
	var meta map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return meta, nil
}

// revisionDate prefers the record's modification date over its issue date,
// truncated to the ISO day.
func revisionDate(meta map[string]any) string {
	for _, key := range []string{"modified", "issued"} {
		if s, _ := meta[key].(string); len(s) >= 10 {
			return s[:10]
		}
	}
	return ""
}

// tarballURL finds the first .tgz distribution in the NERDm record.
func tarballURL(meta map[string]any) string {
	dist, ok := meta["distribution"].([]any)
	if !ok {
		return ""
	}
	for _, d := range dist {
		m, ok := d.(map[string]any)
		if !ok {
			continue
		}
		if url, _ := m["downloadURL"].(string); strings.HasSuffix(url, ".tgz") {
			return url
		}
	}
	return ""
}

// download streams url into a temp file and returns its path.
func (u *Updater) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := u.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: %s", url, resp.Status)
	}

	f, err := os.CreateTemp("", "thermoml-*.tgz")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("save archive: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// extractArchive unpacks a .tgz into destDir, rejecting members whose
// resolved path would escape destDir.
func extractArchive(srcPath, destDir string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}
	defer gz.Close()

	root := filepath.Clean(destDir)
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar member: %w", err)
		}

		target := filepath.Join(root, hdr.Name)
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("tar member %q escapes extraction dir", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.Create(target)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("extract %s: %w", hdr.Name, err)
			}
			if err := out.Close(); err != nil {
				return err
			}
		}
	}
}

func writeInfo(dir string, info Info) error {
	buf, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, infoFileName), buf, 0o644)
}

// LoadInfo reads the cached release record of the mirror at dir.
func LoadInfo(dir string) (Info, error) {
	buf, err := os.ReadFile(filepath.Join(dir, infoFileName))
	if err != nil {
		return Info{}, err
	}
	var info Info
	if err := json.Unmarshal(buf, &info); err != nil {
		return Info{}, fmt.Errorf("parse %s: %w", infoFileName, err)
	}
	return info, nil
}

// LoadMetadata reads the mirror's release record as generic repository
// metadata. A missing or unreadable record degrades to an empty map with a
// warning.
func LoadMetadata(dir string, log *zap.SugaredLogger) map[string]any {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	buf, err := os.ReadFile(filepath.Join(dir, infoFileName))
	if err != nil {
		log.Warnw("could not load repository metadata", "dir", dir, "error", err)
		return map[string]any{}
	}
	var meta map[string]any
	if err := json.Unmarshal(buf, &meta); err != nil {
		log.Warnw("could not parse repository metadata", "dir", dir, "error", err)
		return map[string]any{}
	}
	return meta
}

// ListXMLFiles returns the mirror's XML files whose base name starts with
// prefix (a journal prefix, typically), sorted for reproducible compiles.
func ListXMLFiles(dir, prefix string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, prefix+"*.xml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

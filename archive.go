package homcubes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/hupe1980/homcubes/blobstore"
	"github.com/hupe1980/homcubes/codec"
	"github.com/hupe1980/homcubes/diagram"
	"github.com/hupe1980/homcubes/resource"
)

const (
	// LatestPointer is the blob holding the name of the newest saved run.
	// On blobstore/s3.DDBCommitStore it is committed through DynamoDB.
	LatestPointer = "LATEST"

	manifestBlob = "manifest"
	diagramBlob  = "diagram.pd"
)

// ErrInvalidName is returned for run names that are empty, absolute, not
// clean or reserved.
var ErrInvalidName = errors.New("homcubes: invalid run name")

// Manifest describes an archived run.
type Manifest struct {
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	Shape       []int     `json:"shape"`
	Periodic    []bool    `json:"periodic"`
	Diagram     string    `json:"diagram"`
	Compression string    `json:"compression"`
	Size        int64     `json:"size"`
	Pairs       int       `json:"pairs"`
	Betti       []int     `json:"betti"`
	Stats       Stats     `json:"stats"`
}

// Archive stores diagrams and their manifests in a blob store. Each run
// lives under its own name:
//
//	<name>/manifest         codec name, newline, encoded Manifest
//	<name>/diagram.pd[.zst] DIPHA diagram, optionally compressed
//	LATEST                  name of the newest run
type Archive struct {
	store blobstore.BlobStore
	opts  options
}

// NewArchive returns an archive over store. It honors WithCodec,
// WithCompression, WithLatestPointer, WithResourceController (IO limit),
// WithLogger and WithMetricsCollector.
func NewArchive(store blobstore.BlobStore, optFns ...Option) *Archive {
	return &Archive{store: store, opts: applyOptions(optFns)}
}

func checkName(name string) error {
	switch {
	case name == "", name == LatestPointer, strings.HasPrefix(name, "/"),
		path.Clean(name) != name, name == "..", strings.HasPrefix(name, "../"):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Save stores the diagram of res under name, then its manifest, then moves
// the LATEST pointer. A run is complete once its manifest exists.
func (a *Archive) Save(ctx context.Context, name string, res *Result) (m *Manifest, err error) {
	start := time.Now()
	var size int64
	defer func() {
		a.opts.metricsCollector.RecordArchive(size, time.Since(start), err)
		a.opts.logger.LogArchive(ctx, "save", name, size, err)
	}()

	if err := checkName(name); err != nil {
		return nil, err
	}

	payload, err := a.encodeDiagram(res.Diagram)
	if err != nil {
		return nil, fmt.Errorf("archive: save %s: %w", name, err)
	}
	blob := path.Join(name, diagramBlob+a.opts.compression.Ext())
	if err := a.write(ctx, blob, payload); err != nil {
		return nil, fmt.Errorf("archive: save %s: %w", name, err)
	}
	size = int64(len(payload))

	m = &Manifest{
		Name:        name,
		CreatedAt:   time.Now().UTC(),
		Shape:       res.Shape,
		Periodic:    res.Periodic,
		Diagram:     blob,
		Compression: a.opts.compression.String(),
		Size:        size,
		Pairs:       res.Diagram.Len(),
		Betti:       res.Betti(),
		Stats:       res.Stats,
	}
	encoded, err := a.encodeManifest(m)
	if err != nil {
		return nil, fmt.Errorf("archive: save %s: %w", name, err)
	}
	if err := a.store.Put(ctx, path.Join(name, manifestBlob), encoded); err != nil {
		return nil, fmt.Errorf("archive: save %s: manifest: %w", name, err)
	}
	size += int64(len(encoded))

	if a.opts.updateLatest {
		if err := a.store.Put(ctx, LatestPointer, []byte(name)); err != nil {
			return nil, fmt.Errorf("archive: save %s: %s: %w", name, LatestPointer, err)
		}
	}
	return m, nil
}

// Load returns the diagram and the manifest of the run name.
func (a *Archive) Load(ctx context.Context, name string) (d *diagram.Diagram, m *Manifest, err error) {
	start := time.Now()
	var size int64
	defer func() {
		a.opts.metricsCollector.RecordArchive(size, time.Since(start), err)
		a.opts.logger.LogArchive(ctx, "load", name, size, err)
	}()

	m, err = a.Manifest(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	payload, err := a.read(ctx, m.Diagram)
	if err != nil {
		return nil, nil, fmt.Errorf("archive: load %s: %w", name, translateError(err))
	}
	size = int64(len(payload))

	d, err = decodeDiagram(payload, m.Compression)
	if err != nil {
		return nil, nil, fmt.Errorf("archive: load %s: %w", name, err)
	}
	return d, m, nil
}

// LoadLatest loads the run the LATEST pointer names.
func (a *Archive) LoadLatest(ctx context.Context) (*diagram.Diagram, *Manifest, error) {
	name, err := a.Latest(ctx)
	if err != nil {
		return nil, nil, err
	}
	return a.Load(ctx, name)
}

// Latest returns the name of the newest saved run.
func (a *Archive) Latest(ctx context.Context) (string, error) {
	data, err := blobstore.ReadAll(ctx, a.store, LatestPointer)
	if err != nil {
		return "", fmt.Errorf("archive: %s: %w", LatestPointer, translateError(err))
	}
	return string(data), nil
}

// Manifest returns the manifest of the run name.
func (a *Archive) Manifest(ctx context.Context, name string) (*Manifest, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	data, err := a.read(ctx, path.Join(name, manifestBlob))
	if err != nil {
		return nil, fmt.Errorf("archive: manifest %s: %w", name, translateError(err))
	}
	m, err := decodeManifest(data)
	if err != nil {
		return nil, fmt.Errorf("archive: manifest %s: %w", name, err)
	}
	return m, nil
}

// List returns the sorted names of the complete runs.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	names, err := a.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("archive: list: %w", err)
	}
	var runs []string
	for _, n := range names {
		if run, ok := strings.CutSuffix(n, "/"+manifestBlob); ok {
			runs = append(runs, run)
		}
	}
	return runs, nil
}

// Delete removes the run name. The manifest goes first so a partially
// deleted run is never listed.
func (a *Archive) Delete(ctx context.Context, name string) error {
	m, err := a.Manifest(ctx, name)
	if err != nil {
		return err
	}
	if err := a.store.Delete(ctx, path.Join(name, manifestBlob)); err != nil {
		return fmt.Errorf("archive: delete %s: %w", name, err)
	}
	if err := a.store.Delete(ctx, m.Diagram); err != nil {
		return fmt.Errorf("archive: delete %s: %w", name, err)
	}
	return nil
}

func (a *Archive) encodeDiagram(d *diagram.Diagram) ([]byte, error) {
	if a.opts.compression == diagram.CompressionNone {
		return d.MarshalBinary()
	}
	return diagram.Encode(d, a.opts.compression)
}

func decodeDiagram(data []byte, compression string) (*diagram.Diagram, error) {
	c, err := diagram.ParseCompression(compression)
	if err != nil {
		return nil, err
	}
	if c == diagram.CompressionNone {
		d := &diagram.Diagram{}
		if err := d.UnmarshalBinary(data); err != nil {
			return nil, err
		}
		return d, nil
	}
	return diagram.Decode(data)
}

func (a *Archive) encodeManifest(m *Manifest) ([]byte, error) {
	body, err := a.opts.codec.Marshal(m)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(a.opts.codec.Name())+1+len(body))
	out = append(out, a.opts.codec.Name()...)
	out = append(out, '\n')
	return append(out, body...), nil
}

// decodeManifest selects the codec by the name in the first line.
func decodeManifest(data []byte) (*Manifest, error) {
	name, body, ok := bytes.Cut(data, []byte{'\n'})
	if !ok {
		return nil, errors.New("manifest without codec header")
	}
	c, err := codec.Lookup(string(name))
	if err != nil {
		return nil, err
	}
	m := &Manifest{}
	if err := c.Unmarshal(body, m); err != nil {
		return nil, err
	}
	return m, nil
}

// write streams data into the store through the IO limiter.
func (a *Archive) write(ctx context.Context, name string, data []byte) error {
	w, err := a.store.Create(ctx, name)
	if err != nil {
		return err
	}
	limited := resource.NewRateLimitedWriter(ctx, w, a.opts.controller)
	if _, err := io.Copy(limited, bytes.NewReader(data)); err != nil {
		return errors.Join(err, blobstore.Abort(w))
	}
	return w.Close()
}

// read returns the content of a blob through the IO limiter.
func (a *Archive) read(ctx context.Context, name string) ([]byte, error) {
	b, err := a.store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	size := b.Size()
	if size == 0 {
		return []byte{}, nil
	}
	rc, err := b.ReadRange(ctx, 0, size)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	buf := make([]byte, size)
	if _, err := io.ReadFull(resource.NewRateLimitedReader(ctx, rc, a.opts.controller), buf); err != nil {
		return nil, err
	}
	return buf, nil
}

package mpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mpapi/pkg/schema"
)

// ElectronicStructureQuery filters the electronic_structure route.
type ElectronicStructureQuery struct {
	MaterialIDs      []string
	Formula          []string
	Chemsys          []string
	Elements         []string
	MagneticOrdering schema.Ordering
	IsGapDirect      *bool
	IsMetal          *bool
	BandGap          Range
	EFermi           Range
}

// Query renders the filters as API parameters.
func (e ElectronicStructureQuery) Query() (Query, error) {
	q := Query{
		"formula":           e.Formula,
		"chemsys":           e.Chemsys,
		"elements":          e.Elements,
		"magnetic_ordering": e.MagneticOrdering,
		"is_gap_direct":     e.IsGapDirect,
		"is_metal":          e.IsMetal,
	}
	if err := setIDs(q, "material_ids", e.MaterialIDs); err != nil {
		return nil, err
	}
	q.SetRange("band_gap", e.BandGap)
	q.SetRange("efermi", e.EFermi)
	return q, nil
}

// ElectronicStructureRester queries electronic structure summaries.
type ElectronicStructureRester struct {
	*Rester[schema.ElectronicStructureDoc]
}

// SearchElectronicStructureDocs returns the summaries matching eq.
func (r *ElectronicStructureRester) SearchElectronicStructureDocs(ctx context.Context, eq ElectronicStructureQuery, opts ...SearchOption) ([]schema.ElectronicStructureDoc, error) {
	q, err := eq.Query()
	if err != nil {
		return nil, err
	}
	return r.Search(ctx, q, opts...)
}

// BandStructureQuery filters band structure summaries along one path type.
// Without PathType the other filters are ignored by the API.
type BandStructureQuery struct {
	PathType         schema.BSPathType
	BandGap          Range
	EFermi           Range
	MagneticOrdering schema.Ordering
	IsGapDirect      *bool
	IsMetal          *bool
}

// BandStructureRester queries band structure summaries and objects.
type BandStructureRester struct {
	*Rester[schema.ElectronicStructureDoc]
	object *Rester[objectDoc]
}

func newBandStructureRester(c *Client) *BandStructureRester {
	return &BandStructureRester{
		Rester: NewRester[schema.ElectronicStructureDoc](c, "electronic_structure/bandstructure"),
		object: NewRester[objectDoc](c, "electronic_structure/bandstructure/object"),
	}
}

// SearchBandStructureSummary returns the materials whose band structure
// along bq.PathType matches bq.
func (r *BandStructureRester) SearchBandStructureSummary(ctx context.Context, bq BandStructureQuery, opts ...SearchOption) ([]schema.ElectronicStructureDoc, error) {
	pt := bq.PathType
	if pt == "" {
		pt = schema.PathSetyawanCurtarolo
	}
	q := Query{
		"path_type":         pt,
		"magnetic_ordering": bq.MagneticOrdering,
		"is_gap_direct":     bq.IsGapDirect,
		"is_metal":          bq.IsMetal,
	}
	q.SetRange("band_gap", bq.BandGap)
	q.SetRange("efermi", bq.EFermi)
	return r.Search(ctx, q, opts...)
}

// GetBandstructureFromTaskID returns the serialized band structure computed
// by a task.
func (r *BandStructureRester) GetBandstructureFromTaskID(ctx context.Context, taskID string) (map[string]any, error) {
	return fetchObject(ctx, r.object, taskID)
}

// GetBandstructureFromMaterialID returns the line-mode band structure of a
// material along pathType. With lineMode false the uniform band structure
// of the density of states calculation is returned instead.
func (r *BandStructureRester) GetBandstructureFromMaterialID(ctx context.Context, materialID string, pathType schema.BSPathType, lineMode bool) (map[string]any, error) {
	if !lineMode {
		es, err := r.GetDataByID(ctx, materialID, "dos")
		if err != nil {
			return nil, err
		}
		taskID := totalDOSTask(es.DOS)
		if taskID == "" {
			return nil, fmt.Errorf("%w: no uniform band structure data found for %s", ErrNoResult, materialID)
		}
		return r.GetBandstructureFromTaskID(ctx, taskID)
	}

	if pathType == "" {
		pathType = schema.PathSetyawanCurtarolo
	}
	es, err := r.GetDataByID(ctx, materialID, "bandstructure")
	if err != nil {
		return nil, err
	}
	bs, ok := es.Bandstructure[pathType]
	if !ok || bs.TaskID == "" {
		return nil, fmt.Errorf("%w: no %s band structure data found for %s", ErrNoResult, pathType, materialID)
	}
	return r.GetBandstructureFromTaskID(ctx, bs.TaskID)
}

// DOSQuery filters density of states summaries for one projection.
type DOSQuery struct {
	ProjectionType   schema.DOSProjectionType
	Spin             int
	Element          string
	Orbital          schema.OrbitalType
	BandGap          Range
	EFermi           Range
	MagneticOrdering schema.Ordering
}

// DosRester queries density of states summaries and objects.
type DosRester struct {
	*Rester[schema.ElectronicStructureDoc]
	object *Rester[objectDoc]
}

func newDosRester(c *Client) *DosRester {
	return &DosRester{
		Rester: NewRester[schema.ElectronicStructureDoc](c, "electronic_structure/dos"),
		object: NewRester[objectDoc](c, "electronic_structure/dos/object"),
	}
}

// SearchDOSSummary returns the materials whose DOS projection matches dq.
func (r *DosRester) SearchDOSSummary(ctx context.Context, dq DOSQuery, opts ...SearchOption) ([]schema.ElectronicStructureDoc, error) {
	q := Query{
		"magnetic_ordering": dq.MagneticOrdering,
	}
	if dq.ProjectionType != "" {
		spin := dq.Spin
		if spin == 0 {
			spin = 1
		}
		q["projection_type"] = dq.ProjectionType
		q["spin"] = spin
		q["element"] = dq.Element
		q["orbital"] = dq.Orbital
		q.SetRange("band_gap", dq.BandGap)
		q.SetRange("efermi", dq.EFermi)
	}
	return r.Search(ctx, q, opts...)
}

// GetDosFromTaskID returns the serialized density of states computed by a task.
func (r *DosRester) GetDosFromTaskID(ctx context.Context, taskID string) (map[string]any, error) {
	return fetchObject(ctx, r.object, taskID)
}

// GetDosFromMaterialID returns the total density of states of a material.
func (r *DosRester) GetDosFromMaterialID(ctx context.Context, materialID string) (map[string]any, error) {
	es, err := r.GetDataByID(ctx, materialID, "dos")
	if err != nil {
		return nil, err
	}
	taskID := totalDOSTask(es.DOS)
	if taskID == "" {
		return nil, fmt.Errorf("%w: no density of states data found for %s", ErrNoResult, materialID)
	}
	return r.GetDosFromTaskID(ctx, taskID)
}

// totalDOSTask reads dos.total["1"].task_id.
func totalDOSTask(dos map[string]any) string {
	total, _ := dos["total"].(map[string]any)
	up, _ := total["1"].(map[string]any)
	id, _ := up["task_id"].(string)
	return id
}

// objectDoc is an object index entry with its attached payload.
type objectDoc struct {
	TaskID string         `mpapi:"key" json:"task_id"`
	FSID   string         `json:"fs_id,omitempty"`
	Data   map[string]any `json:"data"`
}

func fetchObject(ctx context.Context, r *Rester[objectDoc], taskID string) (map[string]any, error) {
	ids, err := ValidateIDs([]string{taskID})
	if err != nil {
		return nil, err
	}
	docs, _, err := r.single(ctx, "", url.Values{"task_id": {ids[0]}, "_fields": {"data"}})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 || docs[0].Data == nil {
		return nil, fmt.Errorf("%w: no object found for %s", ErrNoResult, ids[0])
	}
	return docs[0].Data, nil
}

// chargeDensityFields are the only fields searchable on charge_density.
var chargeDensityFields = []string{"last_updated", "task_id", "fs_id"}

// ChargeDensityRester queries stored charge densities.
type ChargeDensityRester struct {
	*Rester[schema.ChgcarDataDoc]
}

func newChargeDensityRester(c *Client) *ChargeDensityRester {
	r := NewRester[schema.ChgcarDataDoc](c, "charge_density").withChunkSize(5)
	r.fields = append([]string(nil), chargeDensityFields...)
	return &ChargeDensityRester{Rester: r}
}

// SearchChargeDensities returns the index entries of the given task ids.
// Payloads are not included.
func (r *ChargeDensityRester) SearchChargeDensities(ctx context.Context, taskIDs []string, opts ...SearchOption) ([]schema.ChgcarDataDoc, error) {
	q := Query{}
	if err := setIDs(q, "task_ids", taskIDs); err != nil {
		return nil, err
	}
	opts = append([]SearchOption{Fields(chargeDensityFields...)}, opts...)
	return r.Search(ctx, q, opts...)
}

// GetChargeDensityFromTaskID returns the charge density payload of a task.
func (r *ChargeDensityRester) GetChargeDensityFromTaskID(ctx context.Context, taskID string) (map[string]any, error) {
	ids, err := ValidateIDs([]string{taskID})
	if err != nil {
		return nil, err
	}
	docs, _, err := r.single(ctx, "", url.Values{"task_ids": {ids[0]}, "_fields": {"task_id,fs_id,data"}})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 || docs[0].Data == nil {
		return nil, fmt.Errorf("%w: no charge density found for %s", ErrNoResult, ids[0])
	}
	return docs[0].Data, nil
}

// DownloadForTaskIDs writes the charge density of every task to dir as
// <task_id>.json.gz, or <task_id>.json when compress is false. It returns
// the number of files written. Tasks without a charge density are skipped.
func (r *ChargeDensityRester) DownloadForTaskIDs(ctx context.Context, dir string, taskIDs []string, compress bool) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("mpapi: create %s: %w", dir, err)
	}
	ids, err := ValidateIDs(taskIDs)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		data, err := r.GetChargeDensityFromTaskID(ctx, id)
		if err != nil {
			if isNoResult(err) {
				r.client.obs.logger.Warn("no charge density for task", zap.String("task_id", id))
				continue
			}
			return n, err
		}
		if err := writeJSON(filepath.Join(dir, chgcarFileName(id, compress)), data, compress); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func chgcarFileName(taskID string, compress bool) string {
	name := strings.ReplaceAll(taskID, "/", "_") + ".json"
	if compress {
		name += ".gz"
	}
	return name
}

func writeJSON(path string, v any, compress bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("mpapi: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("mpapi: close %s: %w", path, cerr)
		}
	}()

	if !compress {
		return json.NewEncoder(f).Encode(v)
	}
	zw := gzip.NewWriter(f)
	if err := json.NewEncoder(zw).Encode(v); err != nil {
		return fmt.Errorf("mpapi: write %s: %w", path, err)
	}
	return zw.Close()
}

// FermiRester queries Fermi surfaces.
type FermiRester struct {
	*Rester[schema.FermiDoc]
}

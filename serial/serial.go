package serial

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/patchbay/enginecore/diag"
	"github.com/patchbay/enginecore/model"
)

// Sample names one slot of the project's 8-entry sample table.
type Sample struct {
	Name string
	N    int
}

// Settings carries the persisted transport tempo. ticksPerBeat is a global
// constant of the deployment and is deliberately not stored.
type Settings struct {
	Tempo float64
}

// Meta is the project's descriptive header.
type Meta struct {
	Name      string
	CreatedAt string
	UpdatedAt string
}

// Project is the in-memory form of one saved document.
type Project struct {
	Graph    model.Snapshot
	Samples  []*Sample // nil or one entry per slot, any of which may be nil; Load and Save do not check the length
	Settings *Settings
	Meta     *Meta
}

// versionProbe reads just enough of a document to tell which schema
// version it is, without committing to either full shape yet.
type versionProbe struct {
	SchemaVersion int `json:"schemaVersion"`
}

// Load decodes a project document from r. On any decode failure or an
// unsupported schema version it returns the supplied fallback (typically
// the last project that loaded cleanly) as Value instead of a zero
// Project, so a caller can keep showing a working graph rather than
// blanking the canvas on one bad save file. A v0 document migrates forward
// with a SERIAL_VERSION_MIGRATED warning.
func Load(r io.Reader, fallback Project) diag.Result[Project] {
	fail := func(code diag.Code, msg string) diag.Result[Project] {
		return diag.Result[Project]{OK: false, Value: fallback, Errors: []diag.Issue{
			{Code: code, Message: msg, OpIndex: -1},
		}}
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return fail(CodeMalformedJSON, "read project: "+err.Error())
	}

	var probe versionProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return fail(CodeMalformedJSON, "decode project: "+err.Error())
	}

	switch {
	case probe.SchemaVersion == 0:
		var v0 projectDocV0
		if err := json.Unmarshal(raw, &v0); err != nil {
			return fail(CodeMalformedJSON, "decode v0 project: "+err.Error())
		}
		// v0 -> v1: top-level groups move under graph.
		g := v0.Graph
		if g.Groups == nil {
			g.Groups = v0.Groups
		}
		project := projectFromDoc(projectDocV1{
			Graph: g, Samples: v0.Samples, Settings: v0.Settings, Project: v0.Project,
		})
		return diag.Ok(project).WithWarnings(diag.Issue{
			Code: CodeVersionMigrated, OpIndex: -1,
			Message: fmt.Sprintf("project migrated from schema version 0 to %d", CurrentVersion),
		})
	case probe.SchemaVersion == CurrentVersion:
		var v1 projectDocV1
		if err := json.Unmarshal(raw, &v1); err != nil {
			return fail(CodeMalformedJSON, "decode v1 project: "+err.Error())
		}
		return diag.Ok(projectFromDoc(v1))
	default:
		return fail(CodeVersionUnsupported,
			fmt.Sprintf("unsupported project schema version %d", probe.SchemaVersion))
	}
}

// Save encodes project as a current-version document.
func Save(w io.Writer, project Project) error {
	doc := docFromProject(project)
	doc.SchemaVersion = CurrentVersion
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Marshal is a convenience wrapper around Save for callers that want bytes
// directly, e.g. a test fixture or an in-memory autosave slot.
func Marshal(project Project) ([]byte, error) {
	var buf bytes.Buffer
	if err := Save(&buf, project); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadSnapshot and SaveSnapshot are graph-only conveniences for callers
// with no interest in samples or settings.
func LoadSnapshot(r io.Reader, fallback model.Snapshot) diag.Result[model.Snapshot] {
	result := Load(r, Project{Graph: fallback})
	return diag.Result[model.Snapshot]{
		OK: result.OK, Value: result.Value.Graph,
		Errors: result.Errors, Warnings: result.Warnings,
	}
}

func SaveSnapshot(w io.Writer, snap model.Snapshot) error {
	return Save(w, Project{Graph: snap})
}

package serial

import (
	"github.com/patchbay/enginecore/internal/geom"
	"github.com/patchbay/enginecore/model"
)

func projectFromDoc(doc projectDocV1) Project {
	p := Project{Graph: snapshotFromDoc(doc.Graph)}

	if doc.Samples != nil {
		p.Samples = make([]*Sample, len(doc.Samples))
		for i, s := range doc.Samples {
			if s == nil {
				continue
			}
			p.Samples[i] = &Sample{Name: s.Name, N: s.N}
		}
	}
	if doc.Settings != nil {
		p.Settings = &Settings{Tempo: doc.Settings.Tempo}
	}
	if doc.Project != nil {
		p.Meta = &Meta{Name: doc.Project.Name, CreatedAt: doc.Project.CreatedAt, UpdatedAt: doc.Project.UpdatedAt}
	}
	return p
}

func docFromProject(p Project) projectDocV1 {
	doc := projectDocV1{Graph: docFromSnapshot(p.Graph)}

	if p.Samples != nil {
		doc.Samples = make([]*sampleDoc, len(p.Samples))
		for i, s := range p.Samples {
			if s == nil {
				continue
			}
			doc.Samples[i] = &sampleDoc{Name: s.Name, N: s.N}
		}
	}
	if p.Settings != nil {
		doc.Settings = &settingsDoc{Tempo: p.Settings.Tempo}
	}
	if p.Meta != nil {
		doc.Project = &projectMetaDoc{Name: p.Meta.Name, CreatedAt: p.Meta.CreatedAt, UpdatedAt: p.Meta.UpdatedAt}
	}
	return doc
}

func snapshotFromDoc(g graphDoc) model.Snapshot {
	nodes := make([]model.NodeRecord, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = model.NodeRecord{
			ID: n.ID, Type: n.Type,
			Position: geom.Point{X: n.X, Y: n.Y},
			Rotation: n.Rotation,
			Params:   n.Params,
			Name:     n.Name,
			GroupRef: n.GroupRef,
		}
	}

	edges := make([]model.EdgeRecord, len(g.Edges))
	for i, e := range g.Edges {
		corners := make([]geom.Point, len(e.Corners))
		for j, c := range e.Corners {
			corners[j] = geom.Point{X: c.X, Y: c.Y}
		}
		edges[i] = model.EdgeRecord{
			ID:      e.ID,
			From:    model.EndPoint{NodeID: e.From.NodeID, Slot: e.From.Slot},
			To:      model.EndPoint{NodeID: e.To.NodeID, Slot: e.To.Slot},
			Corners: corners,
		}
	}

	groups := make(map[string]model.GroupDefinition, len(g.Groups))
	for id, gd := range g.Groups {
		groups[id] = model.GroupDefinition{
			ID:       gd.ID,
			Inputs:   mappingsFromDoc(gd.Inputs),
			Outputs:  mappingsFromDoc(gd.Outputs),
			Controls: mappingsFromDoc(gd.Controls),
			Internal: snapshotFromDoc(gd.Internal),
		}
	}

	return model.Snapshot{Nodes: nodes, Edges: edges, Groups: groups}
}

func mappingsFromDoc(docs []portMappingDoc) []model.GroupPortMapping {
	out := make([]model.GroupPortMapping, len(docs))
	for i, d := range docs {
		out[i] = model.GroupPortMapping{InternalNodeID: d.InternalNodeID, InternalSlot: d.InternalSlot}
	}
	return out
}

func docFromSnapshot(s model.Snapshot) graphDoc {
	nodes := make([]nodeDoc, len(s.Nodes))
	for i, n := range s.Nodes {
		nodes[i] = nodeDoc{
			ID: n.ID, Type: n.Type,
			X: n.Position.X, Y: n.Position.Y,
			Rotation: n.Rotation,
			Params:   n.Params,
			Name:     n.Name,
			GroupRef: n.GroupRef,
		}
	}

	edges := make([]edgeDoc, len(s.Edges))
	for i, e := range s.Edges {
		corners := make([]pointDoc, len(e.Corners))
		for j, c := range e.Corners {
			corners[j] = pointDoc{X: c.X, Y: c.Y}
		}
		edges[i] = edgeDoc{
			ID:      e.ID,
			From:    endPointDoc{NodeID: e.From.NodeID, Slot: e.From.Slot},
			To:      endPointDoc{NodeID: e.To.NodeID, Slot: e.To.Slot},
			Corners: corners,
		}
	}

	groups := make(map[string]groupDoc, len(s.Groups))
	for id, g := range s.Groups {
		groups[id] = groupDoc{
			ID:       g.ID,
			Inputs:   mappingsToDoc(g.Inputs),
			Outputs:  mappingsToDoc(g.Outputs),
			Controls: mappingsToDoc(g.Controls),
			Internal: docFromSnapshot(g.Internal),
		}
	}

	return graphDoc{Nodes: nodes, Edges: edges, Groups: groups}
}

func mappingsToDoc(mappings []model.GroupPortMapping) []portMappingDoc {
	out := make([]portMappingDoc, len(mappings))
	for i, m := range mappings {
		out[i] = portMappingDoc{InternalNodeID: m.InternalNodeID, InternalSlot: m.InternalSlot}
	}
	return out
}

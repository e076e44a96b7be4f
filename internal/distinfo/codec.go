package distinfo

import "github.com/drahosp/luadist/internal/metacodec"

// ToNode renders d as a metacodec table node, suitable for
// metacodec.WriteRecord or as one element of a manifest array. Provided is
// never emitted: back-references to a providing DistInfo are a resolver-
// internal bookkeeping detail and are never persisted.
func (d *DistInfo) ToNode() *metacodec.Node {
	var fields []metacodec.Field
	fields = append(fields, metacodec.Field{Key: "name", Value: metacodec.String(d.Name)})
	fields = append(fields, metacodec.Field{Key: "version", Value: metacodec.String(d.Version)})
	if d.Arch != "" {
		fields = append(fields, metacodec.Field{Key: "arch", Value: metacodec.String(d.Arch)})
	}
	if d.Type != "" {
		fields = append(fields, metacodec.Field{Key: "type", Value: metacodec.String(d.Type)})
	}
	if !d.Depends.IsEmptySpec() {
		fields = append(fields, metacodec.Field{Key: "depends", Value: d.Depends.toNode()})
	}
	if !d.Conflicts.IsEmptySpec() {
		fields = append(fields, metacodec.Field{Key: "conflicts", Value: d.Conflicts.toNode()})
	}
	if !d.Provides.IsEmptySpec() {
		fields = append(fields, metacodec.Field{Key: "provides", Value: d.Provides.toNode()})
	}
	if d.URL != "" {
		fields = append(fields, metacodec.Field{Key: "url", Value: metacodec.String(d.URL)})
	}
	if d.Desc != "" {
		fields = append(fields, metacodec.Field{Key: "desc", Value: metacodec.String(d.Desc)})
	}
	if d.Author != "" {
		fields = append(fields, metacodec.Field{Key: "author", Value: metacodec.String(d.Author)})
	}
	if d.Maintainer != "" {
		fields = append(fields, metacodec.Field{Key: "maintainer", Value: metacodec.String(d.Maintainer)})
	}
	if d.License != "" {
		fields = append(fields, metacodec.Field{Key: "license", Value: metacodec.String(d.License)})
	}
	if d.Message != "" {
		fields = append(fields, metacodec.Field{Key: "message", Value: metacodec.String(d.Message)})
	}
	if d.Path != "" {
		fields = append(fields, metacodec.Field{Key: "path", Value: metacodec.String(d.Path)})
	}
	if len(d.Files) > 0 {
		items := make([]*metacodec.Node, len(d.Files))
		for i, f := range d.Files {
			items[i] = metacodec.String(f)
		}
		fields = append(fields, metacodec.Field{Key: "files", Value: metacodec.Array(items...)})
	}
	fields = append(fields, d.raw...)
	return metacodec.Table(fields...)
}

// knownFields are the dist.info keys this package models explicitly;
// anything else round-trips unmodified through DistInfo.raw.
var knownFields = map[string]bool{
	"name": true, "version": true, "arch": true, "type": true,
	"depends": true, "conflicts": true, "provides": true,
	"url": true, "desc": true, "author": true, "maintainer": true,
	"license": true, "message": true, "path": true, "files": true,
}

// FromNode parses a metacodec table node into a DistInfo. It does not
// validate the result; call Validate separately.
func FromNode(n *metacodec.Node) *DistInfo {
	d := &DistInfo{}
	if v, ok := n.Get("name"); ok {
		d.Name = v.Str
	}
	if v, ok := n.Get("version"); ok {
		d.Version = v.Str
	}
	if v, ok := n.Get("arch"); ok {
		d.Arch = v.Str
	}
	if v, ok := n.Get("type"); ok {
		d.Type = v.Str
	}
	if v, ok := n.Get("depends"); ok {
		d.Depends = constraintSpecFromNode(v)
	}
	if v, ok := n.Get("conflicts"); ok {
		d.Conflicts = constraintSpecFromNode(v)
	}
	if v, ok := n.Get("provides"); ok {
		d.Provides = constraintSpecFromNode(v)
	}
	if v, ok := n.Get("url"); ok {
		d.URL = v.Str
	}
	if v, ok := n.Get("desc"); ok {
		d.Desc = v.Str
	}
	if v, ok := n.Get("author"); ok {
		d.Author = v.Str
	}
	if v, ok := n.Get("maintainer"); ok {
		d.Maintainer = v.Str
	}
	if v, ok := n.Get("license"); ok {
		d.License = v.Str
	}
	if v, ok := n.Get("message"); ok {
		d.Message = v.Str
	}
	if v, ok := n.Get("path"); ok {
		d.Path = v.Str
	}
	if v, ok := n.Get("files"); ok {
		for _, item := range v.Items {
			d.Files = append(d.Files, item.Str)
		}
	}
	for _, f := range n.Fields {
		if !knownFields[f.Key] {
			d.raw = append(d.raw, f)
		}
	}
	return d
}

// IsEmptySpec reports whether s carries no constraints at all (nil, empty
// list, and empty map are all considered empty).
func (s *ConstraintSpec) IsEmptySpec() bool {
	if s == nil {
		return true
	}
	return len(s.List) == 0 && len(s.Keyed) == 0
}

func (s *ConstraintSpec) toNode() *metacodec.Node {
	if s.IsKeyed() {
		fields := make([]metacodec.Field, 0, len(s.Keyed))
		for key, sub := range s.Keyed {
			fields = append(fields, metacodec.Field{Key: key, Value: sub.toNode()})
		}
		return metacodec.Table(fields...)
	}
	items := make([]*metacodec.Node, len(s.List))
	for i, entry := range s.List {
		items[i] = metacodec.String(entry)
	}
	return metacodec.Array(items...)
}

func constraintSpecFromNode(n *metacodec.Node) *ConstraintSpec {
	if n == nil {
		return nil
	}
	if n.Kind == metacodec.KindTable {
		keyed := make(map[string]*ConstraintSpec, len(n.Fields))
		for _, f := range n.Fields {
			keyed[f.Key] = constraintSpecFromNode(f.Value)
		}
		return &ConstraintSpec{Keyed: keyed}
	}
	list := make([]string, len(n.Items))
	for i, item := range n.Items {
		list[i] = item.Str
	}
	return &ConstraintSpec{List: list}
}

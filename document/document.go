// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package document implements the Document Assembler, the Object-Graph
// Builder, and the Serializer + Xref entry point: it owns the page list
// and resource tables a caller builds up with Add* calls, and Save runs
// the full pipeline (resource resolution, glyph-usage collection, font
// subsetting, content-stream lowering, object-graph construction) to
// produce a single PDF byte stream.
package document

import (
	"crypto/md5"
	"fmt"
	"io"
	"sort"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/text/language"

	"go.pdfx.dev/pdfx"
	"go.pdfx.dev/pdfx/annotation"
	"go.pdfx.dev/pdfx/font"
	"go.pdfx.dev/pdfx/glyphuse"
	"go.pdfx.dev/pdfx/graphics"
	"go.pdfx.dev/pdfx/image"
	"go.pdfx.dev/pdfx/metadata"
	"go.pdfx.dev/pdfx/oc"
	"go.pdfx.dev/pdfx/outline"
	"go.pdfx.dev/pdfx/pagetree"
	"go.pdfx.dev/pdfx/resolve"
)

// PageSpec is one page's operation list plus its three rectangles, in
// points. Pages are value-typed: they reference resources by the opaque
// ids Add* returns rather than holding them directly.
type PageSpec struct {
	Ops      []graphics.Op
	MediaBox *pdf.Rectangle
	CropBox  *pdf.Rectangle
	TrimBox  *pdf.Rectangle
}

// Conformance selects which PDF/X-3:2002 auxiliary content a save
// includes. The zero value is PDFX3, the fully conformant default.
type Conformance struct {
	kind conformanceKind
	// RequiresICC and RequiresXMP apply only when kind is custom.
	RequiresICC bool
	RequiresXMP bool
}

type conformanceKind int

const (
	conformancePDFX3 conformanceKind = iota
	conformanceNoICC
	conformanceCustom
)

// PDFX3 requires both the embedded sRGB ICC profile and XMP metadata.
var PDFX3 = Conformance{kind: conformancePDFX3}

// NoICC suppresses the output-intent ICC profile but keeps XMP metadata.
var NoICC = Conformance{kind: conformanceNoICC}

// Custom lets a caller independently toggle the ICC profile and XMP
// metadata when neither PDFX3 nor NoICC fits.
func Custom(requiresICC, requiresXMP bool) Conformance {
	return Conformance{kind: conformanceCustom, RequiresICC: requiresICC, RequiresXMP: requiresXMP}
}

func (c Conformance) wantsICC() bool {
	switch c.kind {
	case conformancePDFX3:
		return true
	case conformanceNoICC:
		return false
	default:
		return c.RequiresICC
	}
}

func (c Conformance) wantsXMP() bool {
	if c.kind == conformanceCustom {
		return c.RequiresXMP
	}
	return true // both PDFX3 and NoICC still carry XMP metadata
}

// ImageOptimization selects per-image re-encoding on save. Only None is
// fully implemented today: Auto is accepted but currently behaves like
// None (Flate on the decoded samples) since a DCT encoder is an external
// collaborator this module does not embed.
type ImageOptimization int

const (
	ImageOptimizationNone ImageOptimization = iota
	ImageOptimizationAuto
)

// SaveOptions controls the serialization pipeline. The zero value is not
// the default; use [DefaultSaveOptions].
type SaveOptions struct {
	Optimize          bool
	SubsetFonts       bool
	Secure            bool
	Conformance       Conformance
	ImageOptimization ImageOptimization

	// Strict turns recoverable warnings (unbalanced graphics state,
	// unbalanced text sections) into terminal errors instead of
	// forcibly balancing and warning. Secure mode's forced balancing
	// takes precedence when both are set.
	Strict bool

	// Now pins the metadata packet's CreateDate/ModifyDate fallback, for
	// deterministic output across repeated saves of the same document
	// (the trailer's second /ID element is a hash of the bytes written,
	// so it is pinned along with them). The zero Time uses the real wall
	// clock.
	Now time.Time
}

// DefaultSaveOptions returns the recommended defaults: optimize,
// subsetFonts, and secure all true, PDF/X-3:2002 conformance, no image
// re-encoding.
func DefaultSaveOptions() SaveOptions {
	return SaveOptions{
		Optimize:    true,
		SubsetFonts: true,
		Secure:      true,
		Conformance: PDFX3,
	}
}

// Document assembles a page list and its resource tables, owned
// exclusively by the caller until Save is called.
type Document struct {
	Info     pdf.Info
	Metadata metadata.Info

	// Lang is the document's default natural language, written to the
	// catalog's /Lang entry when set to anything but language.Und.
	Lang language.Tag

	fonts     map[string]*font.ParsedFont
	fontOrder []string

	images     map[string]*image.XObject
	imageOrder []string

	extgstates     map[string]pdf.Dict
	extgstateOrder []string

	layers     map[string]*oc.Group
	layerOrder []string

	bookmarks []*outline.Node

	pages []PageSpec

	seq int
}

// New returns an empty Document.
func New() *Document {
	return &Document{
		fonts:      map[string]*font.ParsedFont{},
		images:     map[string]*image.XObject{},
		extgstates: map[string]pdf.Dict{},
		layers:     map[string]*oc.Group{},
	}
}

// nextID returns a fresh id with prefix, deterministic given insertion
// order: a per-document monotonic counter, never wall-clock or
// unseeded randomness, so two runs with identical Add* call sequences
// produce identical ids.
func (d *Document) nextID(prefix string) string {
	id := fmt.Sprintf("%s%d", prefix, d.seq)
	d.seq++
	return id
}

// fingerprint returns a hash of the document's structure (page count,
// allocated id sequence) for use as the trailer /ID's first element: the
// same across repeated saves of an unchanged document, different across
// documents with a different shape, and computed before any wall-clock or
// randomness enters the picture.
func (d *Document) fingerprint() []byte {
	h := md5.New()
	fmt.Fprintf(h, "pages=%d seq=%d\n", len(d.pages), d.seq)
	for _, id := range d.fontOrder {
		fmt.Fprintf(h, "font=%s\n", id)
	}
	for _, id := range d.imageOrder {
		fmt.Fprintf(h, "image=%s\n", id)
	}
	for _, id := range d.extgstateOrder {
		fmt.Fprintf(h, "gs=%s\n", id)
	}
	for _, id := range d.layerOrder {
		fmt.Fprintf(h, "layer=%s\n", id)
	}
	return h.Sum(nil)
}

// AddFont parses data as a TrueType/OpenType font program and registers
// it under a freshly generated id.
func (d *Document) AddFont(name string, data []byte) (string, error) {
	pf, err := font.Parse(name, data)
	if err != nil {
		return "", pdf.NewError(pdf.ErrFontParse, "%s: %v", name, err)
	}
	id := d.nextID("font")
	d.fonts[id] = pf
	d.fontOrder = append(d.fontOrder, id)
	return id, nil
}

// AddImage builds an image XObject from a decoded raster and registers
// it under a freshly generated id.
func (d *Document) AddImage(r image.Raster) (string, error) {
	x, err := image.Build(r)
	if err != nil {
		return "", err
	}
	id := d.nextID("image")
	d.images[id] = x
	d.imageOrder = append(d.imageOrder, id)
	return id, nil
}

// AddExtGState registers an extended graphics state dictionary under a
// freshly generated id.
func (d *Document) AddExtGState(dict pdf.Dict) string {
	id := d.nextID("gs")
	d.extgstates[id] = dict
	d.extgstateOrder = append(d.extgstateOrder, id)
	return id
}

// AddLayer registers an optional-content group under a freshly generated
// id.
func (d *Document) AddLayer(g *oc.Group) string {
	id := d.nextID("layer")
	d.layers[id] = g
	d.layerOrder = append(d.layerOrder, id)
	return id
}

// AddBookmark appends a top-level outline node. PageRef on nodes must be
// filled in after AddPage calls by the caller using PageRefs from a
// prior Save, or left zero for a bookmark with no destination; building
// cross-referencing bookmarks and pages in one pass is the caller's
// responsibility since PageSpec is value-typed and has no identity
// before Save allocates page object numbers.
func (d *Document) AddBookmark(node *outline.Node) {
	d.bookmarks = append(d.bookmarks, node)
}

// AddPage appends one page's operation list and geometry.
func (d *Document) AddPage(spec PageSpec) {
	d.pages = append(d.pages, spec)
}

// builtinFonts is the subset of the 14 standard PDF fonts this module
// recognizes by SetFont font name; anything else is expected to be an
// id returned by AddFont.
var builtinFonts = map[string]bool{
	string(font.TimesRoman): true,
	string(font.Helvetica):  true,
	string(font.Courier):    true,
}

// Save runs the full pipeline and writes the resulting PDF byte stream
// to w, returning every non-fatal warning recorded along the way.
func (d *Document) Save(w io.Writer, opts SaveOptions) ([]pdf.Warning, error) {
	var warnings []pdf.Warning

	pagesOps := make([][]graphics.Op, len(d.pages))
	for i, p := range d.pages {
		pagesOps[i] = p.Ops
	}

	pageSets := make([]resolve.Set, len(d.pages))
	for i, ops := range pagesOps {
		pageSets[i] = resolve.ForPage(ops, nil)
	}

	if err := d.validateResourceIDs(pagesOps, pageSets); err != nil {
		return warnings, err
	}

	usedFonts, usedImages, usedGStates, usedLayers := unionSets(pageSets, opts.Optimize, d)

	glyphResult := glyphuse.Collect(pagesOps, func(id string) (glyphuse.ReverseLookup, bool) {
		pf, ok := d.fonts[id]
		return pf, ok
	})
	for _, warn := range glyphResult.Warnings {
		warnings = append(warnings, pdf.Warning{Message: warn.Message, PageIndex: warn.PageIndex, OpIndex: warn.OpIndex})
	}

	out := pdf.NewWriter(w, &pdf.WriterOptions{Compress: opts.Optimize, ID0: d.fingerprint()})
	out.Catalog = &pdf.Catalog{Lang: d.Lang}

	if opts.Conformance.wantsICC() {
		ref, err := metadata.WriteOutputIntent(out, metadata.SRGBv2, "sRGB IEC61966-2.1", "sRGB IEC61966-2.1")
		if err != nil {
			return warnings, err
		}
		out.Catalog.OutputIntents = pdf.Array{ref}
	}

	fontDictRefs := map[string]pdf.Reference{}
	fontRemap := map[string]map[uint16]uint16{}
	for _, id := range d.fontOrder {
		if !usedFonts[id] {
			continue
		}
		pf := d.fonts[id]
		used := glyphResult.Usage[id]
		embedded, err := font.Embed(out, pf, font.EmbedOptions{
			Subset:       opts.SubsetFonts,
			UsedGlyphs:   usedGlyphSet(used),
			ToUnicodeMap: used,
		})
		if err != nil {
			return warnings, err
		}
		fontDictRefs[id] = embedded.FontDictRef
		fontRemap[id] = embedded.Remap
	}

	imageRefs := map[string]pdf.Reference{}
	for _, id := range d.imageOrder {
		if !usedImages[id] {
			continue
		}
		ref, err := d.images[id].Embed(out)
		if err != nil {
			return warnings, err
		}
		imageRefs[id] = ref
	}

	gsRefs := map[string]pdf.Reference{}
	for _, id := range d.extgstateOrder {
		if !usedGStates[id] {
			continue
		}
		ref := out.Alloc()
		if err := out.Put(ref, d.extgstates[id]); err != nil {
			return warnings, err
		}
		gsRefs[id] = ref
	}

	layerRefs := map[string]pdf.Reference{}
	for _, id := range d.layerOrder {
		if !usedLayers[id] {
			continue
		}
		ref := out.Alloc()
		if err := out.Put(ref, d.layers[id].AsDict()); err != nil {
			return warnings, err
		}
		layerRefs[id] = ref
	}
	if len(layerRefs) > 0 {
		refs := make([]pdf.Reference, 0, len(layerRefs))
		for _, id := range d.layerOrder {
			if ref, ok := layerRefs[id]; ok {
				refs = append(refs, ref)
			}
		}
		out.Catalog.OCProperties = oc.Properties(refs)
	}

	pageTree := pagetree.NewWriter(out, nil)

	builtinFontRefs := map[string]pdf.Reference{}

	for i, spec := range d.pages {
		set := pageSets[i]
		names := graphics.NewPageNames(sortedKeys(set.Fonts), sortedKeys(set.XObjects), sortedKeys(set.ExtGStates), sortedKeys(set.Layers))

		result, err := graphics.Lower(spec.Ops, names, fontRemap, graphics.Options{
			Secure:    opts.Secure,
			Strict:    opts.Strict,
			PageIndex: i,
		})
		if err != nil {
			return warnings, err
		}
		warnings = append(warnings, toDocWarnings(result.Warnings)...)

		contentRef := out.Alloc()
		var filters []pdf.FilterInfo
		if !opts.Optimize {
			filters = []pdf.FilterInfo{{}}
		}
		stm, err := out.OpenStream(contentRef, pdf.Dict{}, filters...)
		if err != nil {
			return warnings, err
		}
		if _, err := stm.Write(result.Content); err != nil {
			return warnings, err
		}
		if err := stm.Close(); err != nil {
			return warnings, err
		}

		resources := pdf.Dict{}
		if fontDict := buildFontResourceDict(set.Fonts, names.Fonts, fontDictRefs, builtinFontRefs, out); len(fontDict) > 0 {
			resources["Font"] = fontDict
		}
		if xobjDict := buildRefResourceDict(set.XObjects, names.XObjects, imageRefs); len(xobjDict) > 0 {
			resources["XObject"] = xobjDict
		}
		if gsDict := buildRefResourceDict(set.ExtGStates, names.ExtGStates, gsRefs); len(gsDict) > 0 {
			resources["ExtGState"] = gsDict
		}
		if propsDict := buildRefResourceDict(set.Layers, names.Layers, layerRefs); len(propsDict) > 0 {
			resources["Properties"] = propsDict
		}

		pageRef := out.Alloc()
		pageDict := pdf.Dict{
			"Type":      pdf.Name("Page"),
			"Parent":    pageTree.Ref(),
			"Contents":  contentRef,
			"Resources": resources,
		}
		if spec.MediaBox != nil {
			pageDict["MediaBox"] = spec.MediaBox
		}
		if spec.CropBox != nil {
			pageDict["CropBox"] = spec.CropBox
		}
		if spec.TrimBox != nil {
			pageDict["TrimBox"] = spec.TrimBox
		}
		if annots := buildAnnotsArray(result.Annotations); len(annots) > 0 {
			pageDict["Annots"] = annots
		}
		if err := out.Put(pageRef, pageDict); err != nil {
			return warnings, err
		}
		pageTree.AppendPage(pageRef)
	}

	pagesRef, err := pageTree.Close()
	if err != nil {
		return warnings, err
	}
	out.Catalog.Pages = pagesRef

	if len(d.bookmarks) > 0 {
		outlineRef, err := outline.Write(out, d.bookmarks)
		if err != nil {
			return warnings, err
		}
		out.Catalog.Outlines = outlineRef
	}

	if opts.Conformance.wantsXMP() {
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		packet := metadata.BuildPacket(&d.Metadata, now)
		metaRef, err := metadata.WritePacket(out, packet, false)
		if err != nil {
			return warnings, err
		}
		out.Catalog.Metadata = metaRef
	}

	out.Info = &d.Info
	if err := out.Close(); err != nil {
		return warnings, err
	}
	return warnings, nil
}

func usedGlyphSet(m map[uint16]rune) map[uint16]bool {
	out := make(map[uint16]bool, len(m))
	for gid := range m {
		out[gid] = true
	}
	return out
}

func toDocWarnings(ws []graphics.Warning) []pdf.Warning {
	out := make([]pdf.Warning, len(ws))
	for i, w := range ws {
		out[i] = pdf.Warning{Message: w.Message, PageIndex: w.PageIndex, OpIndex: w.OpIndex}
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := maps.Keys(m)
	sort.Strings(out)
	return out
}

// validateResourceIDs checks that every resource id a page's ops
// reference is actually registered in the document's resource tables.
// resolve.ForPage only reports which ids a page uses, not whether those
// ids exist anywhere — an op can reference an id that was never passed
// to AddFont/AddImage/AddExtGState/AddLayer, which would otherwise
// silently produce a page whose content stream calls a resource name
// its /Resources dictionary never defines. Must run before PageNames is
// built for any page, since PageNames (and graphics.Lower's own
// resource-table checks) are built directly from this same per-page set
// and so can never themselves observe a missing registration.
func (d *Document) validateResourceIDs(pagesOps [][]graphics.Op, pageSets []resolve.Set) error {
	for i, set := range pageSets {
		for id := range set.Fonts {
			if builtinFonts[id] {
				continue
			}
			if _, ok := d.fonts[id]; !ok {
				return pdf.AtOp(pdf.ErrUnknownResource, i, firstOpIndex(pagesOps[i], func(op graphics.Op) bool {
					sf, ok := op.(graphics.SetFont)
					return ok && sf.Font == id
				}), "font %q referenced but never registered with AddFont", id)
			}
		}
		for id := range set.XObjects {
			if _, ok := d.images[id]; !ok {
				return pdf.AtOp(pdf.ErrUnknownResource, i, firstOpIndex(pagesOps[i], func(op graphics.Op) bool {
					ux, ok := op.(graphics.UseXObject)
					return ok && ux.ID == id
				}), "xobject %q referenced but never registered with AddImage", id)
			}
		}
		for id := range set.ExtGStates {
			if _, ok := d.extgstates[id]; !ok {
				return pdf.AtOp(pdf.ErrUnknownResource, i, firstOpIndex(pagesOps[i], func(op graphics.Op) bool {
					lg, ok := op.(graphics.LoadGraphicsState)
					return ok && lg.GS == id
				}), "extgstate %q referenced but never registered with AddExtGState", id)
			}
		}
		for id := range set.Layers {
			if _, ok := d.layers[id]; !ok {
				return pdf.AtOp(pdf.ErrUnknownResource, i, firstOpIndex(pagesOps[i], func(op graphics.Op) bool {
					bl, ok := op.(graphics.BeginLayer)
					return ok && bl.ID == id
				}), "layer %q referenced but never registered with AddLayer", id)
			}
		}
	}
	return nil
}

// firstOpIndex returns the index of the first op satisfying match, or -1
// if none does (only used to enrich an already-confirmed error with the
// offending op's position).
func firstOpIndex(ops []graphics.Op, match func(graphics.Op) bool) int {
	for i, op := range ops {
		if match(op) {
			return i
		}
	}
	return -1
}

// unionSets computes which resource ids are actually referenced by any
// page; when optimize is false every registered resource is kept
// (dropping nothing), matching the save option's "drop unreferenced
// resources" description.
func unionSets(sets []resolve.Set, optimize bool, d *Document) (fonts, images, gstates, layers map[string]bool) {
	fonts, images, gstates, layers = map[string]bool{}, map[string]bool{}, map[string]bool{}, map[string]bool{}
	if !optimize {
		for _, id := range d.fontOrder {
			fonts[id] = true
		}
		for _, id := range d.imageOrder {
			images[id] = true
		}
		for _, id := range d.extgstateOrder {
			gstates[id] = true
		}
		for _, id := range d.layerOrder {
			layers[id] = true
		}
		return
	}
	for _, s := range sets {
		for id := range s.Fonts {
			if _, ok := d.fonts[id]; ok { // skip builtin font names
				fonts[id] = true
			}
		}
		for id := range s.XObjects {
			images[id] = true
		}
		for id := range s.ExtGStates {
			gstates[id] = true
		}
		for id := range s.Layers {
			layers[id] = true
		}
	}
	return
}

func buildRefResourceDict(set map[string]struct{}, names map[string]string, refs map[string]pdf.Reference) pdf.Dict {
	d := pdf.Dict{}
	for id := range set {
		name, ok := names[id]
		if !ok {
			continue
		}
		ref, ok := refs[id]
		if !ok {
			continue
		}
		d[pdf.Name(name)] = ref
	}
	return d
}

// buildFontResourceDict handles the mixed id space SetFont draws from:
// ids registered via AddFont (looked up in fontDictRefs) and the standard
// font names listed in builtinFonts (lazily given a shared Type1 dict per
// name, reused across pages).
func buildFontResourceDict(set map[string]struct{}, names map[string]string, fontDictRefs map[string]pdf.Reference, builtinRefs map[string]pdf.Reference, out pdf.Putter) pdf.Dict {
	d := pdf.Dict{}
	for id := range set {
		name, ok := names[id]
		if !ok {
			continue
		}
		if ref, ok := fontDictRefs[id]; ok {
			d[pdf.Name(name)] = ref
			continue
		}
		if builtinFonts[id] {
			ref, ok := builtinRefs[id]
			if !ok {
				ref = out.Alloc()
				_ = out.Put(ref, pdf.Dict{
					"Type":     pdf.Name("Font"),
					"Subtype":  pdf.Name("Type1"),
					"BaseFont": pdf.Name(id),
					"Encoding": pdf.Name("WinAnsiEncoding"),
				})
				builtinRefs[id] = ref
			}
			d[pdf.Name(name)] = ref
		}
	}
	return d
}

func buildAnnotsArray(links []graphics.LinkAnnotation) pdf.Array {
	converted := make([]*annotation.Link, len(links))
	for i, l := range links {
		link := &annotation.Link{
			Rect: pdf.Rectangle{LLx: l.Rect[0], LLy: l.Rect[1], URx: l.Rect[2], URy: l.Rect[3]},
			URI:  l.URI,
			Dest: l.Dest,
		}
		if ref, ok := l.Destination.(pdf.Reference); ok {
			link.PageRef = ref
		}
		converted[i] = link
	}
	return annotation.Array(converted)
}

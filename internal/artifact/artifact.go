// Package artifact implements the per-module persisted-state format of
// §6: a stable YAML serialisation of a Module's Interface and
// Implementation (including any procs already lowered to primitive
// form, with their alias analysis), for separate compilation.
// Round-trip equality (load of a saved Module yields a structurally
// equal Module, excluding positions, which may be unknown) is a test
// requirement (§8 Round-trips) — grounded in the teacher's use of
// gopkg.in/yaml.v3 for structured on-disk records
// (internal/eval_harness/spec.go).
package artifact

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/wybec/wybe/internal/alias"
	"github.com/wybec/wybe/internal/astir"
	"github.com/wybec/wybe/internal/ident"
	"github.com/wybec/wybe/internal/prim"
	"github.com/wybec/wybe/internal/symtab"
	"github.com/wybec/wybe/internal/unionfind"
)

// ModuleArtifact is the root persisted record for one module.
type ModuleArtifact struct {
	Dir              string       `yaml:"dir"`
	Spec             []string     `yaml:"spec"`
	Params           []string     `yaml:"params,omitempty"`
	ThisLoadNum      int          `yaml:"this_load_num"`
	MinDependencyNum int          `yaml:"min_dependency_num"`
	Interface        interfaceDTO `yaml:"interface"`
	Implementation   implDTO      `yaml:"implementation"`
}

type interfaceDTO struct {
	Types     map[string]typeEntryDTO   `yaml:"types,omitempty"`
	Resources []string                  `yaml:"resources,omitempty"`
	Procs     map[string][]procEntryDTO `yaml:"procs,omitempty"`
	Reexports map[string]importSpecDTO  `yaml:"reexports,omitempty"`
	Deps      []string                  `yaml:"deps,omitempty"`
}

type typeEntryDTO struct {
	Arity int `yaml:"arity"`
}

type procEntryDTO struct {
	ID    int          `yaml:"id"`
	Proto procProtoDTO `yaml:"proto"`
}

type implDTO struct {
	Imports      map[string]importRecordDTO `yaml:"imports,omitempty"`
	Submodules   map[string]ModuleArtifact  `yaml:"submodules,omitempty"`
	Types        map[string]typeEntryDTO    `yaml:"types,omitempty"`
	Resources    []string                   `yaml:"resources,omitempty"`
	Procs        map[string][]procDefDTO    `yaml:"procs,omitempty"`
	ProcCounters map[string]int             `yaml:"proc_counters,omitempty"`
}

type importRecordDTO struct {
	Uses    []string      `yaml:"uses"`
	Imports importSpecDTO `yaml:"imports"`
}

type importSpecDTO struct {
	Items map[string]string `yaml:"items,omitempty"`
	Whole string             `yaml:"whole,omitempty"` // "", "public", or "private"
}

type procProtoDTO struct {
	Name     string     `yaml:"name"`
	Params   []paramDTO `yaml:"params,omitempty"`
	Resource []string   `yaml:"resource,omitempty"`
	IsTest   bool       `yaml:"is_test,omitempty"`
}

type paramDTO struct {
	Name string      `yaml:"name"`
	Type typeSpecDTO `yaml:"type"`
	Flow string      `yaml:"flow"` // "in", "out", "inout"
}

// procDefDTO persists a single proc overload. SurfaceProto is the
// pre-lowering prototype (used for arity lookups regardless of
// pipeline stage); Proto/Body/Alias are present only once Lowered.
type procDefDTO struct {
	Name         string         `yaml:"name"`
	ID           int            `yaml:"id"`
	Lowered      bool           `yaml:"lowered"`
	SurfaceProto *procProtoDTO  `yaml:"surface_proto,omitempty"`
	Proto        *primProtoDTO  `yaml:"proto,omitempty"`
	Body         *procBodyDTO   `yaml:"body,omitempty"`
	Alias        []aliasPairDTO `yaml:"alias,omitempty"`
}

type primProtoDTO struct {
	Name   string         `yaml:"name"`
	Params []primParamDTO `yaml:"params,omitempty"`
}

type primParamDTO struct {
	Name    primVarNameDTO `yaml:"name"`
	Type    typeSpecDTO    `yaml:"type"`
	Flow    string         `yaml:"flow"`
	Phantom bool           `yaml:"phantom,omitempty"`
}

type aliasPairDTO struct {
	A primVarNameDTO `yaml:"a"`
	B primVarNameDTO `yaml:"b"`
}

type primVarNameDTO struct {
	Name   string `yaml:"name"`
	Suffix int    `yaml:"suffix"`
}

type typeSpecDTO struct {
	Unspecified bool          `yaml:"unspecified,omitempty"`
	Mod         []string      `yaml:"mod,omitempty"`
	Name        string        `yaml:"name,omitempty"`
	Args        []typeSpecDTO `yaml:"args,omitempty"`
}

type procBodyDTO struct {
	Prims []primPlacedDTO `yaml:"prims,omitempty"`
	Fork  *forkDTO        `yaml:"fork,omitempty"`
}

type forkDTO struct {
	Var      primVarNameDTO `yaml:"var"`
	Final    bool           `yaml:"final,omitempty"`
	Branches []procBodyDTO  `yaml:"branches"`
}

type primPlacedDTO struct {
	Kind string `yaml:"kind"` // "call", "foreign", "guard", "fail", "nop"

	// call
	ProcMod  []string     `yaml:"proc_mod,omitempty"`
	ProcName string       `yaml:"proc_name,omitempty"`
	ProcID   int          `yaml:"proc_id,omitempty"`
	Args     []primArgDTO `yaml:"args,omitempty"`

	// foreign
	Lang  string   `yaml:"lang,omitempty"`
	Name  string   `yaml:"name,omitempty"`
	Flags []string `yaml:"flags,omitempty"`

	// guard
	GuardVar primVarNameDTO `yaml:"guard_var,omitempty"`
	GuardVal int64          `yaml:"guard_val,omitempty"`
}

type primArgDTO struct {
	Kind string `yaml:"kind"` // "var" or "lit"

	Var      primVarNameDTO `yaml:"var,omitempty"`
	Type     typeSpecDTO    `yaml:"type"`
	Flow     string         `yaml:"flow,omitempty"`
	FlowTag  string         `yaml:"flow_tag,omitempty"`
	FinalUse bool           `yaml:"final_use,omitempty"`

	LitKind string  `yaml:"lit_kind,omitempty"`
	Int     int64   `yaml:"int,omitempty"`
	Float   float64 `yaml:"float,omitempty"`
	Str     string  `yaml:"str,omitempty"`
	Char    int32   `yaml:"char,omitempty"`
}

// Save serialises mod to path as YAML.
func Save(mod *symtab.Module, path string) error {
	art, err := ToArtifact(mod)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(art)
	if err != nil {
		return fmt.Errorf("artifact: marshal %s: %w", mod.Spec, err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads and reconstructs a Module from a path written by Save.
func Load(path string) (*symtab.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("artifact: read %s: %w", path, err)
	}
	var art ModuleArtifact
	if err := yaml.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("artifact: unmarshal %s: %w", path, err)
	}
	return art.ToModule()
}

// ---- domain -> DTO ----

// ToArtifact converts mod into its persisted DTO form.
func ToArtifact(mod *symtab.Module) (*ModuleArtifact, error) {
	iface := interfaceDTO{
		Types:     make(map[string]typeEntryDTO, len(mod.Interface.Types)),
		Procs:     make(map[string][]procEntryDTO, len(mod.Interface.Procs)),
		Reexports: make(map[string]importSpecDTO, len(mod.Interface.Reexports)),
	}
	for name, entry := range mod.Interface.Types {
		iface.Types[string(name)] = typeEntryDTO{Arity: entry.Arity}
	}
	for name := range mod.Interface.Resources {
		iface.Resources = append(iface.Resources, string(name))
	}
	for name, entries := range mod.Interface.Procs {
		var out []procEntryDTO
		for _, e := range entries {
			out = append(out, procEntryDTO{ID: e.ID, Proto: protoToDTO(e.Proto)})
		}
		iface.Procs[string(name)] = out
	}
	for spec, is := range mod.Interface.Reexports {
		iface.Reexports[spec] = importSpecToDTO(is)
	}
	for dep := range mod.Interface.Deps {
		iface.Deps = append(iface.Deps, dep)
	}
	sort.Strings(iface.Resources)
	sort.Strings(iface.Deps)

	impl, err := implToDTO(mod.Implementation)
	if err != nil {
		return nil, err
	}

	params := make([]string, len(mod.Params))
	for i, p := range mod.Params {
		params[i] = string(p)
	}

	return &ModuleArtifact{
		Dir:              mod.Dir,
		Spec:             identsToStrings(mod.Spec),
		Params:           params,
		ThisLoadNum:      mod.ThisLoadNum,
		MinDependencyNum: mod.MinDependencyNum,
		Interface:        iface,
		Implementation:   *impl,
	}, nil
}

func implToDTO(impl *symtab.Implementation) (*implDTO, error) {
	out := &implDTO{
		Imports:      make(map[string]importRecordDTO, len(impl.Imports)),
		Submodules:   make(map[string]ModuleArtifact, len(impl.Submodules)),
		Types:        make(map[string]typeEntryDTO, len(impl.Types)),
		Procs:        make(map[string][]procDefDTO, len(impl.Procs)),
		ProcCounters: make(map[string]int, len(impl.ProcCounters)),
	}
	for spec, rec := range impl.Imports {
		out.Imports[spec] = importRecordDTO{
			Uses:    identsToStrings(rec.Uses),
			Imports: importSpecToDTO(rec.Imports),
		}
	}
	for name, sub := range impl.Submodules {
		art, err := ToArtifact(sub)
		if err != nil {
			return nil, err
		}
		out.Submodules[string(name)] = *art
	}
	for name, entry := range impl.Types {
		out.Types[string(name)] = typeEntryDTO{Arity: entry.Arity}
	}
	for name := range impl.Resources {
		out.Resources = append(out.Resources, string(name))
	}
	sort.Strings(out.Resources)
	for name, defs := range impl.Procs {
		var dtos []procDefDTO
		for _, def := range defs {
			dto, err := procDefToDTO(def)
			if err != nil {
				return nil, err
			}
			dtos = append(dtos, dto)
		}
		out.Procs[string(name)] = dtos
	}
	for name, n := range impl.ProcCounters {
		out.ProcCounters[string(name)] = n
	}
	return out, nil
}

func procDefToDTO(def *astir.ProcDef) (procDefDTO, error) {
	dto := procDefDTO{Name: string(def.Name), ID: def.ID}
	if def.Proto != nil {
		sp := protoToDTO(def.Proto)
		dto.SurfaceProto = &sp
	}
	switch im := def.Impl.(type) {
	case *astir.PrimitiveImpl:
		dto.Lowered = true
		dto.Proto = primProtoToDTO(im.Proto)
		dto.Body = bodyToDTO(im.Body)
		dto.Alias = aliasPairsOf(im.Analysis)
	case astir.SourceImpl:
		dto.Lowered = false
	default:
		return procDefDTO{}, fmt.Errorf("artifact: proc %s: cannot persist impl stage %d", def.Name, def.Impl.Stage())
	}
	return dto, nil
}

func protoToDTO(proto *astir.ProcProto) procProtoDTO {
	params := make([]paramDTO, len(proto.Params))
	for i, p := range proto.Params {
		params[i] = paramDTO{Name: string(p.Name), Type: typeSpecToDTO(p.Type), Flow: sourceFlowString(p.Flow)}
	}
	resources := make([]string, len(proto.Resource))
	for i, r := range proto.Resource {
		resources[i] = string(r)
	}
	return procProtoDTO{Name: string(proto.Name), Params: params, Resource: resources, IsTest: proto.IsTest}
}

func sourceFlowString(f astir.SourceFlow) string {
	switch f {
	case astir.FlowOut:
		return "out"
	case astir.FlowInOut:
		return "inout"
	default:
		return "in"
	}
}

func parseSourceFlow(s string) astir.SourceFlow {
	switch s {
	case "out":
		return astir.FlowOut
	case "inout":
		return astir.FlowInOut
	default:
		return astir.FlowIn
	}
}

func primProtoToDTO(proto *astir.PrimProto) *primProtoDTO {
	params := make([]primParamDTO, len(proto.Params))
	for i, p := range proto.Params {
		params[i] = primParamDTO{
			Name:    primVarNameDTO{Name: string(p.Name.Name), Suffix: p.Name.Suffix},
			Type:    typeSpecToDTO(p.Type),
			Flow:    p.Flow.String(),
			Phantom: p.Phantom,
		}
	}
	return &primProtoDTO{Name: string(proto.Name), Params: params}
}

func typeSpecToDTO(t ident.TypeSpec) typeSpecDTO {
	if t.IsUnspecified() {
		return typeSpecDTO{Unspecified: true}
	}
	args := make([]typeSpecDTO, len(t.Args))
	for i, a := range t.Args {
		args[i] = typeSpecToDTO(a)
	}
	return typeSpecDTO{Mod: identsToStrings(t.Mod), Name: string(t.Name), Args: args}
}

func bodyToDTO(body *prim.ProcBody) *procBodyDTO {
	if body == nil {
		return nil
	}
	out := &procBodyDTO{}
	for _, pp := range body.Prims {
		out.Prims = append(out.Prims, placedPrimToDTO(pp))
	}
	if fork, ok := body.Fork.(*prim.PrimFork); ok {
		branches := make([]procBodyDTO, len(fork.Branches))
		for i, br := range fork.Branches {
			branches[i] = *bodyToDTO(br)
		}
		out.Fork = &forkDTO{
			Var:      primVarNameDTO{Name: string(fork.Var.Name), Suffix: fork.Var.Suffix},
			Final:    fork.Final,
			Branches: branches,
		}
	}
	return out
}

func placedPrimToDTO(pp prim.PlacedPrim) primPlacedDTO {
	switch p := pp.Prim.(type) {
	case *prim.PrimCall:
		args := make([]primArgDTO, len(p.Args))
		for i, a := range p.Args {
			args[i] = argToDTO(a)
		}
		return primPlacedDTO{Kind: "call", ProcMod: identsToStrings(p.Proc.Mod), ProcName: string(p.Proc.Name), ProcID: p.Proc.ID, Args: args}
	case *prim.PrimForeignCall:
		args := make([]primArgDTO, len(p.Args))
		for i, a := range p.Args {
			args[i] = argToDTO(a)
		}
		flags := make([]string, len(p.Flags))
		for i, f := range p.Flags {
			flags[i] = string(f)
		}
		return primPlacedDTO{Kind: "foreign", Lang: p.Lang, Name: p.Name, Flags: flags, Args: args}
	case *prim.PrimGuard:
		return primPlacedDTO{Kind: "guard", GuardVar: primVarNameDTO{Name: string(p.Var.Name), Suffix: p.Var.Suffix}, GuardVal: p.Val}
	case *prim.PrimFail:
		return primPlacedDTO{Kind: "fail"}
	default:
		return primPlacedDTO{Kind: "nop"}
	}
}

func argToDTO(a prim.PrimArg) primArgDTO {
	switch v := a.(type) {
	case prim.ArgVar:
		return primArgDTO{
			Kind:     "var",
			Var:      primVarNameDTO{Name: string(v.Var.Name), Suffix: v.Var.Suffix},
			Type:     typeSpecToDTO(v.Ty),
			Flow:     v.FlowDir.String(),
			FlowTag:  v.FlowTag.String(),
			FinalUse: v.FinalUse,
		}
	case prim.ArgLit:
		return primArgDTO{
			Kind: "lit", Type: typeSpecToDTO(v.Ty), LitKind: litKindString(v.Kind),
			Int: v.Int, Float: v.Float, Str: v.Str, Char: int32(v.Char),
		}
	default:
		return primArgDTO{Kind: "lit"}
	}
}

func litKindString(k prim.LitKind) string {
	switch k {
	case prim.FloatLit:
		return "float"
	case prim.StringLit:
		return "string"
	case prim.CharLit:
		return "char"
	default:
		return "int"
	}
}

func parseLitKind(s string) prim.LitKind {
	switch s {
	case "float":
		return prim.FloatLit
	case "string":
		return prim.StringLit
	case "char":
		return prim.CharLit
	default:
		return prim.IntLit
	}
}

func parseFlow(s string) prim.Flow {
	if s == "out" {
		return prim.Out
	}
	return prim.In
}

func parseFlowTag(s string) prim.FlowTag {
	switch s {
	case "firstHalf":
		return prim.FirstHalf
	case "secondHalf":
		return prim.SecondHalf
	case "implicit":
		return prim.Implicit
	default:
		return prim.Ordinary
	}
}

func parseVisibility(s string) ident.Visibility {
	if s == "public" {
		return ident.Public
	}
	return ident.Private
}

func importSpecToDTO(is symtab.ImportSpec) importSpecDTO {
	items := make(map[string]string, len(is.Items))
	for name, vis := range is.Items {
		items[string(name)] = vis.String()
	}
	whole := ""
	if is.Whole != nil {
		whole = is.Whole.String()
	}
	return importSpecDTO{Items: items, Whole: whole}
}

func (dto importSpecDTO) toImportSpec() symtab.ImportSpec {
	items := make(map[ident.Ident]ident.Visibility, len(dto.Items))
	for name, vis := range dto.Items {
		items[ident.Ident(name)] = parseVisibility(vis)
	}
	is := symtab.ImportSpec{Items: items}
	if dto.Whole != "" {
		v := parseVisibility(dto.Whole)
		is.Whole = &v
	}
	return is
}

func identsToStrings(ids []ident.Ident) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func modSpecFromStrings(ss []string) ident.ModSpec {
	out := make(ident.ModSpec, len(ss))
	for i, s := range ss {
		out[i] = ident.Ident(s)
	}
	return out
}

func identsFromStrings(ss []string) []ident.Ident {
	out := make([]ident.Ident, len(ss))
	for i, s := range ss {
		out[i] = ident.Ident(s)
	}
	return out
}

// aliasPairsOf extracts a deterministic, sorted pair list from a proc's
// attached alias analysis, if any, for persistence.
func aliasPairsOf(a astir.Analysis) []aliasPairDTO {
	an, ok := a.(*alias.Analysis)
	if !ok || an == nil || an.ArgAliasMap == nil {
		return nil
	}
	pairs := an.ArgAliasMap.CanonicalPairs()
	out := make([]aliasPairDTO, len(pairs))
	for i, p := range pairs {
		out[i] = aliasPairDTO{
			A: primVarNameDTO{Name: string(p[0].Name), Suffix: p[0].Suffix},
			B: primVarNameDTO{Name: string(p[1].Name), Suffix: p[1].Suffix},
		}
	}
	return out
}

// ---- DTO -> domain ----

// ToModule reconstructs a Module from its persisted DTO form.
func (art *ModuleArtifact) ToModule() (*symtab.Module, error) {
	mod := symtab.New(art.Dir, modSpecFromStrings(art.Spec), identsFromStrings(art.Params))
	mod.ThisLoadNum = art.ThisLoadNum
	mod.MinDependencyNum = art.MinDependencyNum

	iface, err := art.Interface.toInterface()
	if err != nil {
		return nil, err
	}
	mod.Interface = iface

	impl, maxID, err := art.Implementation.toImplementation()
	if err != nil {
		return nil, err
	}
	mod.Implementation = impl
	mod.SetNextProcID(maxID)

	return mod, nil
}

func (dto interfaceDTO) toInterface() (*symtab.Interface, error) {
	iface := symtab.NewInterface()
	for name, t := range dto.Types {
		iface.Types[ident.Ident(name)] = symtab.TypeEntry{Arity: t.Arity}
	}
	for _, r := range dto.Resources {
		iface.Resources[ident.Ident(r)] = ident.UnknownPos
	}
	for name, entries := range dto.Procs {
		for _, e := range entries {
			proto := e.Proto.toProcProto()
			iface.Procs[ident.Ident(name)] = append(iface.Procs[ident.Ident(name)], symtab.ProcEntry{ID: e.ID, Proto: proto, Pos: ident.UnknownPos})
		}
	}
	for spec, is := range dto.Reexports {
		iface.Reexports[spec] = is.toImportSpec()
	}
	for _, d := range dto.Deps {
		iface.Deps[d] = true
	}
	return iface, nil
}

func (dto implDTO) toImplementation() (*symtab.Implementation, int, error) {
	impl := symtab.NewImplementation()
	for spec, rec := range dto.Imports {
		impl.Imports[spec] = symtab.ImportRecord{Uses: modSpecFromStrings(rec.Uses), Imports: rec.Imports.toImportSpec()}
	}
	for name, sub := range dto.Submodules {
		subCopy := sub
		subMod, err := subCopy.ToModule()
		if err != nil {
			return nil, 0, err
		}
		impl.Submodules[ident.Ident(name)] = subMod
	}
	for name, t := range dto.Types {
		impl.Types[ident.Ident(name)] = symtab.TypeEntry{Arity: t.Arity}
	}
	for _, r := range dto.Resources {
		impl.Resources[ident.Ident(r)] = ident.UnknownPos
	}
	maxID := 0
	for name, defs := range dto.Procs {
		for _, d := range defs {
			def, err := d.toProcDef()
			if err != nil {
				return nil, 0, err
			}
			impl.Procs[ident.Ident(name)] = append(impl.Procs[ident.Ident(name)], def)
			if def.ID >= maxID {
				maxID = def.ID + 1
			}
		}
	}
	for name, n := range dto.ProcCounters {
		impl.ProcCounters[ident.Ident(name)] = n
	}
	return impl, maxID, nil
}

func (dto procProtoDTO) toProcProto() *astir.ProcProto {
	params := make([]astir.Param, len(dto.Params))
	for i, p := range dto.Params {
		params[i] = astir.Param{Name: ident.Ident(p.Name), Type: p.Type.toTypeSpec(), Flow: parseSourceFlow(p.Flow)}
	}
	resources := make([]ident.Ident, len(dto.Resource))
	for i, r := range dto.Resource {
		resources[i] = ident.Ident(r)
	}
	return &astir.ProcProto{Name: ident.Ident(dto.Name), Params: params, Resource: resources, IsTest: dto.IsTest}
}

func (dto procDefDTO) toProcDef() (*astir.ProcDef, error) {
	def := &astir.ProcDef{Name: ident.Ident(dto.Name), ID: dto.ID}
	if dto.SurfaceProto != nil {
		def.Proto = dto.SurfaceProto.toProcProto()
	}
	if !dto.Lowered {
		def.Impl = astir.SourceImpl{}
		return def, nil
	}
	if dto.Proto == nil || dto.Body == nil {
		return nil, fmt.Errorf("artifact: proc %s: lowered but missing proto/body", dto.Name)
	}
	proto := dto.Proto.toPrimProto()
	body := dto.Body.toProcBody()

	var an astir.Analysis
	if len(dto.Alias) > 0 {
		am := unionfind.New()
		for _, pair := range dto.Alias {
			am.Unite(pair.A.toVarName(), pair.B.toVarName())
		}
		an = &alias.Analysis{ArgAliasMap: am, Proto: proto}
	}
	def.Impl = &astir.PrimitiveImpl{Proto: proto, Body: body, Analysis: an}
	return def, nil
}

func (dto primProtoDTO) toPrimProto() *astir.PrimProto {
	params := make([]astir.PrimParam, len(dto.Params))
	for i, p := range dto.Params {
		params[i] = astir.PrimParam{
			Name:    p.Name.toVarName(),
			Type:    p.Type.toTypeSpec(),
			Flow:    parseFlow(p.Flow),
			Phantom: p.Phantom,
		}
	}
	return &astir.PrimProto{Name: ident.Ident(dto.Name), Params: params}
}

func (dto typeSpecDTO) toTypeSpec() ident.TypeSpec {
	if dto.Unspecified {
		return ident.Unspecified
	}
	args := make([]ident.TypeSpec, len(dto.Args))
	for i, a := range dto.Args {
		args[i] = a.toTypeSpec()
	}
	return ident.NewTypeSpec(modSpecFromStrings(dto.Mod), ident.Ident(dto.Name), args...)
}

func (dto primVarNameDTO) toVarName() prim.PrimVarName {
	return prim.PrimVarName{Name: ident.Ident(dto.Name), Suffix: dto.Suffix}
}

func (dto procBodyDTO) toProcBody() *prim.ProcBody {
	body := prim.NewProcBody()
	for _, pp := range dto.Prims {
		body.Prims = append(body.Prims, prim.PlacedPrim{Prim: pp.toPrim(), Pos: ident.UnknownPos})
	}
	if dto.Fork != nil {
		branches := make([]*prim.ProcBody, len(dto.Fork.Branches))
		for i, br := range dto.Fork.Branches {
			branches[i] = br.toProcBody()
		}
		body.Fork = &prim.PrimFork{Var: dto.Fork.Var.toVarName(), Final: dto.Fork.Final, Branches: branches}
	}
	return body
}

func (dto primPlacedDTO) toPrim() prim.Prim {
	switch dto.Kind {
	case "call":
		args := make([]prim.PrimArg, len(dto.Args))
		for i, a := range dto.Args {
			args[i] = a.toPrimArg()
		}
		spec := prim.ProcSpec{Mod: modSpecFromStrings(dto.ProcMod), Name: ident.Ident(dto.ProcName), ID: dto.ProcID}
		return &prim.PrimCall{Proc: spec, Args: args}
	case "foreign":
		args := make([]prim.PrimArg, len(dto.Args))
		for i, a := range dto.Args {
			args[i] = a.toPrimArg()
		}
		flags := make([]prim.ForeignFlag, len(dto.Flags))
		for i, f := range dto.Flags {
			flags[i] = prim.ForeignFlag(f)
		}
		return &prim.PrimForeignCall{Lang: dto.Lang, Name: dto.Name, Flags: flags, Args: args}
	case "guard":
		return &prim.PrimGuard{Var: dto.GuardVar.toVarName(), Val: dto.GuardVal}
	case "fail":
		return &prim.PrimFail{}
	default:
		return &prim.PrimNop{}
	}
}

func (dto primArgDTO) toPrimArg() prim.PrimArg {
	if dto.Kind == "var" {
		return prim.ArgVar{
			Var:      dto.Var.toVarName(),
			Ty:       dto.Type.toTypeSpec(),
			FlowDir:  parseFlow(dto.Flow),
			FlowTag:  parseFlowTag(dto.FlowTag),
			FinalUse: dto.FinalUse,
		}
	}
	return prim.ArgLit{
		Kind: parseLitKind(dto.LitKind), Ty: dto.Type.toTypeSpec(),
		Int: dto.Int, Float: dto.Float, Str: dto.Str, Char: rune(dto.Char),
	}
}

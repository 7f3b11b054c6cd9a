// Package object implements glint's runtime value model: a tagged sum
// type with deep-clone and structural/identity equality semantics per
// spec.md §3–§4.3.
package object

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Kind identifies the runtime tag of a Value.
type Kind string

const (
	NullKind    Kind = "Null"
	BoolKind    Kind = "Bool"
	NumberKind  Kind = "Number"
	StringKind  Kind = "String"
	ArrayKind   Kind = "Array"
	HashMapKind Kind = "HashMap"
	SetKind     Kind = "Set"
	ObjectKind  Kind = "Object"
	FunctionKind Kind = "Function"
	BuiltinKind Kind = "BuiltinFunction"
	ModuleKind  Kind = "Module"
	ErrorKind   Kind = "Error"
)

// Value is the interface satisfied by every runtime value variant.
type Value interface {
	Kind() Kind
	String() string
}

// handle mints a process-unique identity string for mutable
// containers. HashKey hashes containers on it and it serves
// diagnostics; it is never used for equality, which for mutable
// containers is Go reference identity on the container itself.
func handle() string { return uuid.NewString() }

// ---- Scalars ----

type Null struct{}

func (Null) Kind() Kind     { return NullKind }
func (Null) String() string { return "null" }

type Bool bool

func (b Bool) Kind() Kind     { return BoolKind }
func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

type Number float64

func (n Number) Kind() Kind { return NumberKind }
func (n Number) String() string {
	f := float64(n)
	if math.Trunc(f) == f && !math.IsInf(f, 0) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

type String string

func (s String) Kind() Kind     { return StringKind }
func (s String) String() string { return string(s) }

// ---- Containers (reference identity; allocate fresh on clone) ----

// Array is a mutable, ordered sequence. Equality is reference
// identity: two distinct Array values are never == even with equal
// contents (see DESIGN.md, "Open Question: value equality").
type Array struct {
	Elements []Value
	id       string
}

func NewArray(elems []Value) *Array { return &Array{Elements: elems, id: handle()} }

func (a *Array) Kind() Kind { return ArrayKind }
func (a *Array) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = Inspect(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (a *Array) Handle() string { return a.id }

// pair is one hash-map/set bucket entry; kept as a slice so that
// insertion order is preserved for iteration, per spec.md §3.
type pair struct {
	key Value
	val Value
}

// HashMap is a mutable key/value table with insertion-ordered
// iteration and a hash index for O(1) average lookup on hashable
// keys (scalars). Equality is reference identity.
type HashMap struct {
	entries []pair
	index   map[uint64][]int // hash(key) -> indices into entries
	id      string
}

func NewHashMap() *HashMap {
	return &HashMap{index: make(map[uint64][]int), id: handle()}
}

func (m *HashMap) Kind() Kind { return HashMapKind }
func (m *HashMap) Handle() string { return m.id }

func (m *HashMap) String() string {
	parts := make([]string, 0, len(m.entries))
	for _, p := range m.entries {
		parts = append(parts, Inspect(p.key)+": "+Inspect(p.val))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Set finds an existing key (structural equality) and replaces its
// value, or appends a new entry preserving insertion order.
func (m *HashMap) Set(key, val Value) {
	h := HashKey(key)
	for _, i := range m.index[h] {
		if StructuralEqual(m.entries[i].key, key) {
			m.entries[i].val = val
			return
		}
	}
	m.index[h] = append(m.index[h], len(m.entries))
	m.entries = append(m.entries, pair{key, val})
}

func (m *HashMap) Get(key Value) (Value, bool) {
	h := HashKey(key)
	for _, i := range m.index[h] {
		if StructuralEqual(m.entries[i].key, key) {
			return m.entries[i].val, true
		}
	}
	return nil, false
}

func (m *HashMap) Delete(key Value) bool {
	h := HashKey(key)
	for n, i := range m.index[h] {
		if StructuralEqual(m.entries[i].key, key) {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			delete(m.index, h)
			// Rebuild the index: deletion shifts every later offset.
			newIndex := make(map[uint64][]int, len(m.index))
			for j, p := range m.entries {
				kh := HashKey(p.key)
				newIndex[kh] = append(newIndex[kh], j)
			}
			m.index = newIndex
			_ = n
			return true
		}
	}
	return false
}

func (m *HashMap) Len() int { return len(m.entries) }

func (m *HashMap) Keys() []Value {
	out := make([]Value, len(m.entries))
	for i, p := range m.entries {
		out[i] = p.key
	}
	return out
}

func (m *HashMap) Each(fn func(k, v Value)) {
	for _, p := range m.entries {
		fn(p.key, p.val)
	}
}

// Set is a mutable unordered-membership collection backed by the same
// hashing discipline as HashMap. Equality is reference identity.
type Set struct {
	elements []Value
	index    map[uint64][]int
	id       string
}

func NewSet() *Set { return &Set{index: make(map[uint64][]int), id: handle()} }

func (s *Set) Kind() Kind     { return SetKind }
func (s *Set) Handle() string { return s.id }

func (s *Set) String() string {
	parts := make([]string, len(s.elements))
	for i, e := range s.elements {
		parts[i] = Inspect(e)
	}
	return "Set{" + strings.Join(parts, ", ") + "}"
}

func (s *Set) Add(v Value) bool {
	if s.Has(v) {
		return false
	}
	h := HashKey(v)
	s.index[h] = append(s.index[h], len(s.elements))
	s.elements = append(s.elements, v)
	return true
}

func (s *Set) Has(v Value) bool {
	h := HashKey(v)
	for _, i := range s.index[h] {
		if StructuralEqual(s.elements[i], v) {
			return true
		}
	}
	return false
}

func (s *Set) Len() int         { return len(s.elements) }
func (s *Set) Elements() []Value { return append([]Value(nil), s.elements...) }

// Object is a mutable property bag with insertion-ordered fields.
// Hidden system fields are prefixed by "__" per spec.md §3 (e.g.
// __class_name__, __type__, __library_name__). Equality is reference
// identity.
type Object struct {
	fields []pair // key is always a String
	order  map[string]int
	id     string
}

func NewObject() *Object {
	return &Object{order: make(map[string]int), id: handle()}
}

func (o *Object) Kind() Kind     { return ObjectKind }
func (o *Object) Handle() string { return o.id }

func (o *Object) String() string {
	parts := make([]string, 0, len(o.fields))
	for _, p := range o.fields {
		parts = append(parts, string(p.key.(String))+": "+Inspect(p.val))
	}
	return "Object{" + strings.Join(parts, ", ") + "}"
}

func (o *Object) Set(name string, v Value) {
	if i, ok := o.order[name]; ok {
		o.fields[i].val = v
		return
	}
	o.order[name] = len(o.fields)
	o.fields = append(o.fields, pair{String(name), v})
}

func (o *Object) Get(name string) (Value, bool) {
	if i, ok := o.order[name]; ok {
		return o.fields[i].val, true
	}
	return nil, false
}

func (o *Object) Delete(name string) bool {
	i, ok := o.order[name]
	if !ok {
		return false
	}
	o.fields = append(o.fields[:i], o.fields[i+1:]...)
	delete(o.order, name)
	for k, idx := range o.order {
		if idx > i {
			o.order[k] = idx - 1
		}
	}
	return true
}

func (o *Object) Keys() []string {
	out := make([]string, len(o.fields))
	for i, p := range o.fields {
		out[i] = string(p.key.(String))
	}
	return out
}

// TypeName returns the canonical `.type` string for library/module
// objects, using the "__type__" system field when set, falling back
// to "Object".
func (o *Object) TypeName() string {
	if v, ok := o.Get("__type__"); ok {
		if s, ok := v.(String); ok {
			return string(s)
		}
	}
	return "Object"
}

func (o *Object) ClassName() string {
	if v, ok := o.Get("__class_name__"); ok {
		if s, ok := v.(String); ok {
			return string(s)
		}
	}
	return "Object"
}

// ---- Functions ----

// FunctionParam mirrors ast.Param without importing the ast package,
// keeping object dependency-free of the parser/evaluator stages.
type FunctionParam struct {
	Name string
	Type string
}

// Function is a user-defined closure: parameters, body reference, and
// the captured defining environment. The body is stored as an opaque
// interface{} (the evaluator casts it back to *ast.Block) to avoid an
// import cycle between object and ast/evaluator.
type Function struct {
	Name    string
	Params  []FunctionParam
	Body    interface{}
	Env     interface{} // *environment.Environment, opaque here
	Async   bool
	Variadic bool
}

func (f *Function) Kind() Kind { return FunctionKind }
func (f *Function) String() string {
	name := f.Name
	if name == "" {
		name = "anonymous"
	}
	return fmt.Sprintf("<function %s/%d>", name, len(f.Params))
}

// BuiltinFn is the native-function ABI: (interpreter, args, line,
// column) -> (Value, error). The interpreter handle is opaque here
// (the same import-cycle reason as Function.Env).
type BuiltinFn func(interp interface{}, args []Value, line, column int) (Value, error)

type BuiltinFunction struct {
	Name string
	Fn   BuiltinFn
}

func (b *BuiltinFunction) Kind() Kind     { return BuiltinKind }
func (b *BuiltinFunction) String() string { return fmt.Sprintf("<builtin %s>", b.Name) }

// Module is a named value table produced by `import`.
type Module struct {
	Name    string
	Exports *Object
}

func (m *Module) Kind() Kind     { return ModuleKind }
func (m *Module) String() string { return fmt.Sprintf("<module %s>", m.Name) }

// Error wraps a structured error (errs.ErrorInfo, kept opaque here to
// avoid an import cycle) as a first-class catchable Value.
type Error struct {
	Info interface{}
	Msg  string
}

func (e *Error) Kind() Kind     { return ErrorKind }
func (e *Error) String() string { return e.Msg }

// ---- Equality, hashing, truthiness, clone ----

// StructuralEqual implements the spec's `==`: structural for
// Number/Bool/String/Null, reference identity for mutable aggregates
// (see DESIGN.md, "Open Question: value equality").
func StructuralEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Number:
		return av == b.(Number)
	case String:
		return av == b.(String)
	case *Array:
		return av == b.(*Array)
	case *HashMap:
		return av == b.(*HashMap)
	case *Set:
		return av == b.(*Set)
	case *Object:
		return av == b.(*Object)
	case *Function:
		return av == b.(*Function)
	default:
		return a == b
	}
}

// HashKey produces a hash consistent with StructuralEqual: equal
// scalars hash equal; mutable containers hash on their identity so
// that two structurally-equal-but-distinct containers land in
// different buckets, matching reference-identity equality.
func HashKey(v Value) uint64 {
	h := fnv.New64a()
	switch vv := v.(type) {
	case Null:
		h.Write([]byte{0})
	case Bool:
		if vv {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{2})
		}
	case Number:
		f := float64(vv)
		if f == 0 {
			f = 0 // -0 == 0, so fold -0 into +0 before formatting
		}
		h.Write([]byte(strconv.FormatFloat(f, 'g', -1, 64)))
	case String:
		h.Write([]byte(vv))
	case *Array:
		h.Write([]byte(vv.id))
	case *HashMap:
		h.Write([]byte(vv.id))
	case *Set:
		h.Write([]byte(vv.id))
	case *Object:
		h.Write([]byte(vv.id))
	default:
		h.Write([]byte(fmt.Sprintf("%p", v)))
	}
	return h.Sum64()
}

// Truthy implements the spec's truthiness rule.
func Truthy(v Value) bool {
	switch vv := v.(type) {
	case nil, Null:
		return false
	case Bool:
		return bool(vv)
	case Number:
		return vv != 0
	case String:
		return vv != ""
	case *Array:
		return len(vv.Elements) != 0
	case *HashMap:
		return vv.Len() != 0
	case *Set:
		return vv.Len() != 0
	default:
		return true
	}
}

// Clone performs the spec's deep-clone-for-containers,
// shallow-for-scalars copy used by value_clone.
func Clone(v Value) Value {
	switch vv := v.(type) {
	case *Array:
		elems := make([]Value, len(vv.Elements))
		for i, e := range vv.Elements {
			elems[i] = Clone(e)
		}
		return NewArray(elems)
	case *HashMap:
		m := NewHashMap()
		vv.Each(func(k, val Value) { m.Set(Clone(k), Clone(val)) })
		return m
	case *Set:
		s := NewSet()
		for _, e := range vv.Elements() {
			s.Add(Clone(e))
		}
		return s
	case *Object:
		o := NewObject()
		for _, k := range vv.Keys() {
			val, _ := vv.Get(k)
			o.Set(k, Clone(val))
		}
		return o
	default:
		return v // scalars are immutable, shallow copy is identity
	}
}

// Inspect renders a value the way it should appear nested inside
// another container's String() (strings get quoted).
func Inspect(v Value) string {
	if s, ok := v.(String); ok {
		return strconv.Quote(string(s))
	}
	if v == nil {
		return "null"
	}
	return v.String()
}

// Compare implements numeric/lexicographic ordering for `< <= > >=`.
// Returns (c, true) with c being -1, 0 or 1 on success, or (0, false)
// when the operands are not comparable.
func Compare(a, b Value) (int, bool) {
	if an, ok := a.(Number); ok {
		if bn, ok := b.(Number); ok {
			switch {
			case an < bn:
				return -1, true
			case an > bn:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	if as, ok := a.(String); ok {
		if bs, ok := b.(String); ok {
			return strings.Compare(string(as), string(bs)), true
		}
		return 0, false
	}
	return 0, false
}

// TypeNameOf returns the runtime kind name used by type patterns in
// `spore`, including user class names for Object values.
func TypeNameOf(v Value) string {
	switch vv := v.(type) {
	case *Object:
		return vv.ClassName()
	default:
		if v == nil {
			return string(NullKind)
		}
		return string(v.Kind())
	}
}

// SortValues sorts a slice of Values in place using Compare,
// incomparable elements are left in their relative position (stable
// sort, comparator treats them as equal).
func SortValues(vs []Value) {
	sort.SliceStable(vs, func(i, j int) bool {
		c, ok := Compare(vs[i], vs[j])
		return ok && c < 0
	})
}

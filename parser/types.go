package parser

// CType is a C type as spelled in a declaration. Builtin types are
// normalised ("unsigned", "unsigned int" and "int unsigned" all become
// "unsigned int"); anything else is the identifier or tag name.
type CType struct {
	Name    string
	Tag     string // "struct", "union", "enum" or empty
	IsConst bool
	// Pointers is the level of indirection, e.g. 2 for "char **".
	Pointers int
	// Dims holds array dimensions, outermost first. -1 marks a dimension
	// whose size could not be evaluated; 0 is a flexible array member.
	Dims []int
	// FuncPtr is set for pointers to functions; Name is then the return type.
	FuncPtr bool
}

func (ct CType) IsPointer() bool { return ct.Pointers > 0 || ct.FuncPtr }

func (ct CType) IsArray() bool { return len(ct.Dims) > 0 }

// Elem returns ct with one level of pointer or array removed.
func (ct CType) Elem() CType {
	e := ct
	switch {
	case len(ct.Dims) > 0:
		e.Dims = ct.Dims[1:]
	case ct.Pointers > 0:
		e.Pointers--
	}
	return e
}

type StructField struct {
	Name string
	Type CType
	// BitWidth is the bit-field width, or 0.
	BitWidth int
}

// Struct is a struct or union. Name is the typedef name and Tag the struct
// tag; either may be empty, not both.
type Struct struct {
	Name     string
	Tag      string
	Fields   []StructField
	IsOpaque bool
	IsUnion  bool
	Pos      int
}

type FunctionParam struct {
	Name string
	Type CType
}

type Function struct {
	Name       string
	ReturnType CType
	Params     []FunctionParam
	IsVariadic bool
	Pos        int
}

type TypeDef struct {
	Name       string
	SourceType CType
	Pos        int
}

type EnumValue struct {
	Name  string
	Expr  string
	Value int64
}

// Enum is an enumeration. Anonymous enums (no Name, no Tag) only contribute
// constants. Err records the first enumerator whose value could not be
// evaluated; Values stops before it.
type Enum struct {
	Name   string
	Tag    string
	Values []EnumValue
	Err    error
	Pos    int
}

func (e *Enum) IsAnonymous() bool { return e.Name == "" && e.Tag == "" }

// Macro is an object-like #define.
type Macro struct {
	Name string
	Body string
	Pos  int
}

type ConstKind int

const (
	IntConst ConstKind = iota
	FloatConst
	StringConst
)

// Const is the evaluated value of a macro.
type Const struct {
	Kind ConstKind
	// Int holds integer constants. For unsigned types it is the bit
	// pattern, so values above math.MaxInt64 appear negative.
	Int int64
	// Bits and Unsigned give the C type of an integer constant.
	Bits     int
	Unsigned bool
	Float    float64
	Str      string
}

// Uint returns an unsigned integer constant.
func (c Const) Uint() uint64 {
	return uint64(c.Int)
}

func (c Const) intValue() intValue {
	return intValue{v: c.Int, bits: uint(c.Bits), unsigned: c.Unsigned}
}

// DataModel describes the C target integer constants are evaluated for.
type DataModel struct {
	// LongBits is the width of long, 32 or 64.
	LongBits int
	// CharSigned reports whether plain char is signed.
	CharSigned bool
}

// DefaultDataModel has 64-bit long and unsigned char.
var DefaultDataModel = DataModel{LongBits: 64}

func (m DataModel) longBits() uint {
	if m.LongBits == 32 {
		return 32
	}
	return 64
}

type Header struct {
	Structs   []Struct
	Functions []Function
	TypeDefs  []TypeDef
	Enums     []Enum
	Macros    []Macro

	structByName  map[string]int
	structByTag   map[string]int
	typeDefByName map[string]int
	enumByName    map[string]int
	enumByTag     map[string]int
	macroByName   map[string]int
	enumerators   map[string]int64
	model         DataModel
}

package script

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/ksm-disasm/errors"
	"github.com/wippyai/ksm-disasm/internal/binary"
)

// NameMarker in the first word of a record means an embedded name follows
// the fixed fields. Zero means the record is anonymous.
const NameMarker = 0xffffffff

// ReadVariables reads a count-prefixed list of variable records.
func ReadVariables(section []byte, cat VarCategory) ([]*Variable, error) {
	c := binary.NewCursor(section, errors.PhaseCatalog)
	n, err := c.Next()
	if err != nil {
		return nil, withPath(err, "variables", "count")
	}
	vars := make([]*Variable, 0, min(int(n), c.Remaining()))
	for i := uint32(0); i < n; i++ {
		v, err := readVariable(c, cat)
		if err != nil {
			return nil, withPath(err, "variables", strconv.Itoa(int(i)))
		}
		vars = append(vars, v)
	}
	trailing(c, "variables")
	return vars, nil
}

// ReadTables reads a count-prefixed list of table records.
func ReadTables(section []byte) ([]*Table, error) {
	c := binary.NewCursor(section, errors.PhaseCatalog)
	n, err := c.Next()
	if err != nil {
		return nil, withPath(err, "tables", "count")
	}
	tables := make([]*Table, 0, min(int(n), c.Remaining()))
	for i := uint32(0); i < n; i++ {
		t, err := readTable(c)
		if err != nil {
			return nil, withPath(err, "tables", strconv.Itoa(int(i)))
		}
		tables = append(tables, t)
	}
	trailing(c, "tables")
	return tables, nil
}

// ReadImports reads the function import section.
func ReadImports(section []byte) ([]*FunctionImport, error) {
	c := binary.NewCursor(section, errors.PhaseCatalog)
	n, err := c.Next()
	if err != nil {
		return nil, withPath(err, "imports", "count")
	}
	imports := make([]*FunctionImport, 0, min(int(n), c.Remaining()))
	for i := uint32(0); i < n; i++ {
		im, err := readImport(c)
		if err != nil {
			return nil, withPath(err, "imports", strconv.Itoa(int(i)))
		}
		imports = append(imports, im)
	}
	trailing(c, "imports")
	return imports, nil
}

// ReadFunctionDefs reads the function definition section. Each definition's
// Code aliases the matching window of the code section; Index is its
// position in the returned slice.
func ReadFunctionDefs(section, code []byte) ([]*FunctionDef, error) {
	c := binary.NewCursor(section, errors.PhaseCatalog)
	n, err := c.Next()
	if err != nil {
		return nil, withPath(err, "definitions", "count")
	}
	defs := make([]*FunctionDef, 0, min(int(n), c.Remaining()))
	for i := uint32(0); i < n; i++ {
		fn, err := readFunctionDef(c, code)
		if err != nil {
			return nil, withPath(err, "definitions", strconv.Itoa(int(i)))
		}
		fn.Index = int(i)
		defs = append(defs, fn)
	}
	trailing(c, "definitions")
	return defs, nil
}

func readName(c *binary.Cursor, marker uint32) (string, error) {
	switch marker {
	case NameMarker:
		return c.ReadString()
	case 0:
		return "", nil
	}
	return "", errors.New(errors.PhaseCatalog, errors.KindInvalidData).
		At(c.Index()).
		Value(marker).
		Detail("name marker 0x%x", marker).
		Build()
}

func readVariable(c *binary.Cursor, cat VarCategory) (*Variable, error) {
	f, err := fields(c, 4)
	if err != nil {
		return nil, err
	}
	v := &Variable{
		ID:       f[1],
		Status:   VarStatus(f[2] & 0xffffff),
		Flags:    uint8(f[2] >> 24),
		Category: cat,
		Ref:      f[3],
	}
	if v.Name, err = readName(c, f[0]); err != nil {
		return nil, err
	}
	if v.Status == StatusStringRef {
		if v.RefString, err = c.ReadString(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func readTable(c *binary.Cursor) (*Table, error) {
	f, err := fields(c, 4)
	if err != nil {
		return nil, err
	}
	t := &Table{ID: f[1], Flags: f[2]}
	if t.Name, err = readName(c, f[0]); err != nil {
		return nil, err
	}
	if int(f[3]) > c.Remaining() {
		return nil, errors.OutOfBounds(errors.PhaseCatalog, []string{"entries"}, int(f[3]), c.Remaining())
	}
	if t.Entries, err = fields(c, int(f[3])); err != nil {
		return nil, err
	}
	return t, nil
}

func readLabel(c *binary.Cursor) (*Label, error) {
	f, err := fields(c, 3)
	if err != nil {
		return nil, err
	}
	l := &Label{ID: f[1], CodeOffset: f[2]}
	if l.Name, err = readName(c, f[0]); err != nil {
		return nil, err
	}
	return l, nil
}

// readImport reads marker, field, type, pad, id, pad, pad and the name.
func readImport(c *binary.Cursor) (*FunctionImport, error) {
	at := c.Index()
	f, err := fields(c, 7)
	if err != nil {
		return nil, err
	}
	typ := ImportType(f[2])
	if !typ.Valid() {
		return nil, errors.InvalidEnum(errors.PhaseCatalog, []string{"type"}, at+2, f[2], "ImportType")
	}
	im := &FunctionImport{ID: f[4], Field: uint16(f[1]), Type: typ}
	if im.Name, err = readName(c, f[0]); err != nil {
		return nil, err
	}
	return im, nil
}

func readFunctionDef(c *binary.Cursor, code []byte) (*FunctionDef, error) {
	f, err := fields(c, 8)
	if err != nil {
		return nil, err
	}
	fn := &FunctionDef{
		ID:        f[1],
		Public:    f[2],
		Field0C:   f[3],
		CodeStart: f[4],
		CodeEnd:   f[5],
		ReturnVar: f[6],
		Field34:   f[7],
	}
	if fn.Name, err = readName(c, f[0]); err != nil {
		return nil, err
	}

	// Bounds skip the marker word that precedes every body.
	words := uint32(len(code) / binary.WordSize)
	switch {
	case fn.CodeStart == fn.CodeEnd:
	case fn.CodeStart > fn.CodeEnd || fn.CodeEnd >= words:
		return nil, errors.New(errors.PhaseCatalog, errors.KindOutOfBounds).
			Path("code").
			Value([2]uint32{fn.CodeStart, fn.CodeEnd}).
			Detail("code range [0x%x, 0x%x] outside %d code words", fn.CodeStart, fn.CodeEnd, words).
			Build()
	default:
		fn.Code = code[(fn.CodeStart+1)*binary.WordSize : (fn.CodeEnd+1)*binary.WordSize]
	}

	n, err := c.Next()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < n; i++ {
		v, err := readVariable(c, LocalVar)
		if err != nil {
			return nil, withPath(err, "locals", strconv.Itoa(int(i)))
		}
		if v.Name == "" {
			v.Alias = strconv.Itoa(int(v.ID>>8) & 0xff)
		}
		fn.Locals = append(fn.Locals, v)
	}

	if n, err = c.Next(); err != nil {
		return nil, err
	}
	for i := uint32(0); i < n; i++ {
		t, err := readTable(c)
		if err != nil {
			return nil, withPath(err, "tables", strconv.Itoa(int(i)))
		}
		fn.Tables = append(fn.Tables, t)
	}

	if n, err = c.Next(); err != nil {
		return nil, err
	}
	for i := uint32(0); i < n; i++ {
		l, err := readLabel(c)
		if err != nil {
			return nil, withPath(err, "labels", strconv.Itoa(int(i)))
		}
		fn.Labels = append(fn.Labels, l)
	}
	return fn, nil
}

func fields(c *binary.Cursor, n int) ([]uint32, error) {
	out := make([]uint32, n)
	for i := range out {
		w, err := c.Next()
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

// withPath prefixes the path of a structured error.
func withPath(err error, path ...string) error {
	if e, ok := err.(*errors.Error); ok {
		e.Path = append(append([]string(nil), path...), e.Path...)
	}
	return err
}

func trailing(c *binary.Cursor, section string) {
	if n := c.Remaining(); n > 0 {
		Logger().Debug("trailing catalog words",
			zap.String("section", section),
			zap.Int("words", n))
	}
}

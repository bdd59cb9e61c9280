package sqlite

import (
	"database/sql/driver"
	"fmt"

	"github.com/w-h-a/librarian/catalog"
	sqlite "modernc.org/sqlite"
)

// registerFunctions installs the scalar functions the catalog queries rely on.
// SQLite's own LIKE and lower() only fold ASCII, which misses "Á" vs "á".
func registerFunctions() error {
	if err := sqlite.RegisterDeterministicScalarFunction("vec_distance_cos", 2, vecDistanceCos); err != nil {
		return err
	}
	return sqlite.RegisterDeterministicScalarFunction("fold", 1, fold)
}

func vecDistanceCos(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, err := blobArg(args[0])
	if err != nil {
		return nil, err
	}
	b, err := blobArg(args[1])
	if err != nil {
		return nil, err
	}
	if len(a) == 0 || len(b) == 0 {
		return float64(1), nil
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("vec_distance_cos: dimension mismatch %d vs %d", len(a), len(b))
	}
	return catalog.CosineDistance(a, b), nil
}

func fold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return catalog.Fold(v), nil
	case []byte:
		return catalog.Fold(string(v)), nil
	default:
		return catalog.Fold(fmt.Sprint(v)), nil
	}
}

func blobArg(v driver.Value) ([]float32, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return catalog.DecodeVector(x)
	case string:
		return catalog.DecodeVector([]byte(x))
	default:
		return nil, fmt.Errorf("vec_distance_cos: unsupported type %T", v)
	}
}

package stdlib

import (
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/glintlang/glint/internal/object"
)

// DB builds the `db` library: a thin SQLite surface over
// database/sql and modernc.org/sqlite's pure-Go driver, letting guest
// programs persist state without a cgo dependency.
func DB() *object.Object {
	handles := map[string]*sql.DB{}

	return NewLibrary("db", map[string]object.BuiltinFn{
		"open": func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			path, err := str(args, 0, line, col)
			if err != nil {
				return nil, err
			}
			conn, operr := sql.Open("sqlite", path)
			if operr != nil {
				return nil, newArgError("could not open database: "+operr.Error(), line, col)
			}
			handle := object.NewObject()
			handle.Set("__type__", object.String("DBHandle"))
			handle.Set("__handle__", object.String(path))
			handles[path] = conn
			return handle, nil
		},
		"exec": func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			conn, query, err := dbArgs(handles, args, line, col)
			if err != nil {
				return nil, err
			}
			res, eerr := conn.Exec(query, sqlArgs(args[2:])...)
			if eerr != nil {
				return nil, newArgError("exec failed: "+eerr.Error(), line, col)
			}
			affected, _ := res.RowsAffected()
			return object.Number(affected), nil
		},
		"query": func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			conn, query, err := dbArgs(handles, args, line, col)
			if err != nil {
				return nil, err
			}
			rows, qerr := conn.Query(query, sqlArgs(args[2:])...)
			if qerr != nil {
				return nil, newArgError("query failed: "+qerr.Error(), line, col)
			}
			defer rows.Close()
			cols, _ := rows.Columns()
			var out []object.Value
			for rows.Next() {
				scanTargets := make([]interface{}, len(cols))
				scanVals := make([]interface{}, len(cols))
				for i := range scanTargets {
					scanTargets[i] = &scanVals[i]
				}
				if serr := rows.Scan(scanTargets...); serr != nil {
					return nil, newArgError("scan failed: "+serr.Error(), line, col)
				}
				row := object.NewObject()
				for i, col := range cols {
					row.Set(col, fromJSON(normalizeYAML(scanVals[i])))
				}
				out = append(out, row)
			}
			return object.NewArray(out), nil
		},
		"close": func(_ interface{}, args []object.Value, line, col int) (object.Value, error) {
			handle, err := dbHandleName(args, line, col)
			if err != nil {
				return nil, err
			}
			if conn, ok := handles[handle]; ok {
				conn.Close()
				delete(handles, handle)
			}
			return object.Bool(true), nil
		},
	})
}

func dbHandleName(args []object.Value, line, col int) (string, error) {
	if len(args) == 0 {
		return "", newArgError("missing db handle argument", line, col)
	}
	obj, ok := args[0].(*object.Object)
	if !ok {
		return "", newArgError("expected a DBHandle argument", line, col)
	}
	v, _ := obj.Get("__handle__")
	s, ok := v.(object.String)
	if !ok {
		return "", newArgError("value is not a DBHandle", line, col)
	}
	return string(s), nil
}

func dbArgs(handles map[string]*sql.DB, args []object.Value, line, col int) (*sql.DB, string, error) {
	name, err := dbHandleName(args, line, col)
	if err != nil {
		return nil, "", err
	}
	conn, ok := handles[name]
	if !ok {
		return nil, "", newArgError("database handle is closed", line, col)
	}
	query, err := str(args, 1, line, col)
	if err != nil {
		return nil, "", err
	}
	return conn, query, nil
}

func sqlArgs(vals []object.Value) []interface{} {
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		out[i] = toJSON(v)
	}
	return out
}

package result

import "errors"

var ErrLastInsertIdNotSupported = errors.New("LastInsertId is not supported by this driver")

// RowsAffected is a session.Result of drivers that only report the number
// of affected rows, such as pgx command tags.
func RowsAffected(n int64) ResultImp {
	return ResultImp{rowsAffected: n}
}

type ResultImp struct {
	rowsAffected int64
}

func (r ResultImp) LastInsertId() (int64, error) {
	return 0, ErrLastInsertIdNotSupported
}

func (r ResultImp) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}

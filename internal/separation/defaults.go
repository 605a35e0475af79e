package separation

// DefaultTables returns the reference separation minima in seconds. Rows are
// the leading aircraft category, columns the trailing one, both ordered
// light, medium, large, heavy.
func DefaultTables() Tables {
	return Tables{
		ArrArr: Table{
			{87, 76, 76, 69},
			{145, 101, 76, 69},
			{145, 101, 101, 103},
			{174, 127, 127, 103},
		},
		ArrDep: Table{
			{70, 70, 70, 70},
			{70, 70, 70, 70},
			{70, 70, 70, 70},
			{70, 70, 70, 70},
		},
		DepArr: Table{
			{112, 99, 99, 99},
			{112, 99, 99, 99},
			{112, 99, 99, 99},
			{112, 99, 99, 99},
		},
		DepDep: Table{
			{60, 60, 60, 60},
			{60, 60, 60, 60},
			{60, 60, 60, 60},
			{60, 60, 60, 60},
		},
	}
}

// Default returns a Matrix built from DefaultTables
func Default() *Matrix {
	m, err := New(DefaultTables())
	if err != nil {
		panic(err)
	}
	return m
}

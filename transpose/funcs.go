package transpose

// Func transposes a (N rows by M columns) into b (M rows by N columns).
type Func func(a, b *Matrix)

// Entry is a registered transpose routine.
type Entry struct {
	Desc string
	Func Func
}

// SubmitDesc identifies the tuned routine.
const SubmitDesc = "Transpose submission"

var registry = []Entry{
	{Desc: SubmitDesc, Func: Submit},
	{Desc: "Simple row-wise scan transpose", Func: Baseline},
}

// Register adds a routine to the set evaluated by Functions.
func Register(desc string, fn Func) {
	registry = append(registry, Entry{Desc: desc, Func: fn})
}

// Functions returns the registered routines, the tuned one first.
func Functions() []Entry {
	return append([]Entry(nil), registry...)
}

// Baseline transposes row by row without regard for the cache.
func Baseline(a, b *Matrix) {
	for i := 0; i < a.Rows(); i++ {
		for j := 0; j < a.Cols(); j++ {
			b.Set(j, i, a.Get(i, j))
		}
	}
}

// Submit is tuned for a 1KB direct-mapped cache with 32-byte blocks, where
// a block holds eight elements. The 32x32, 64x64 and 61x67 shapes have
// dedicated access orders; other shapes use 8x8 tiles.
func Submit(a, b *Matrix) {
	m, n := a.Cols(), a.Rows()

	switch {
	case m == 32 && n == 32:
		transpose32(a, b)
	case m == 64 && n == 64:
		transpose64(a, b)
	case m == 61 && n == 67:
		transpose61x67(a, b)
	default:
		Tiled8(a, b)
	}
}

// copyRow moves w elements of row i starting at column j of a into column i
// of b. All loads complete before the first store.
func copyRow(a, b *Matrix, i, j, w int) {
	var tmp [8]int32
	for k := 0; k < w; k++ {
		tmp[k] = a.Get(i, j+k)
	}
	for k := 0; k < w; k++ {
		b.Set(j+k, i, tmp[k])
	}
}

// copyColumn moves w elements of column j starting at row i of a into row j
// of b.
func copyColumn(a, b *Matrix, i, j, w int) {
	var tmp [8]int32
	for k := 0; k < w; k++ {
		tmp[k] = a.Get(i+k, j)
	}
	for k := 0; k < w; k++ {
		b.Set(j, i+k, tmp[k])
	}
}

func transpose32(a, b *Matrix) {
	for i := 0; i < 32; i += 8 {
		for j := 0; j < 32; j += 8 {
			for line := 0; line < 8; line++ {
				copyRow(a, b, i+line, j, 8)
			}
		}
	}
}

// transpose64 uses 4x4 tiles, since rows of b four apart share a set.
// Diagonal tiles go last.
func transpose64(a, b *Matrix) {
	for i := 0; i < 64; i += 4 {
		for j := 0; j < 64; j += 4 {
			if i == j {
				continue
			}
			for line := 0; line < 4; line++ {
				copyRow(a, b, i+line, j, 4)
			}
		}
	}

	for i := 0; i < 64; i += 4 {
		for line := 0; line < 4; line++ {
			copyRow(a, b, i+line, i, 4)
		}
	}
}

func transpose61x67(a, b *Matrix) {
	// columns 0-55 of rows 0-63
	for j := 0; j < 56; j += 8 {
		for i := 0; i < 64; i += 8 {
			for line := 0; line < 8; line++ {
				copyRow(a, b, i+line, j, 8)
			}
		}
	}

	// columns 56-60 of rows 0-63
	for i := 0; i < 64; i += 8 {
		for j := 56; j < 61; j++ {
			copyColumn(a, b, i, j, 8)
		}
	}

	// columns 0-55 of rows 64-66
	for j := 0; j < 56; j += 8 {
		for i := 64; i < 67; i++ {
			copyRow(a, b, i, j, 8)
		}
	}

	for j := 56; j < 61; j++ {
		for i := 64; i < 67; i++ {
			b.Set(j, i, a.Get(i, j))
		}
	}
}

// Tiled8 transposes in 8x8 tiles regardless of the matrix shape.
func Tiled8(a, b *Matrix) {
	transposeTiled(a, b, 8)
}

func transposeTiled(a, b *Matrix, tile int) {
	n, m := a.Rows(), a.Cols()

	for ii := 0; ii < n; ii += tile {
		for jj := 0; jj < m; jj += tile {
			for i := ii; i < min(ii+tile, n); i++ {
				for j := jj; j < min(jj+tile, m); j++ {
					b.Set(j, i, a.Get(i, j))
				}
			}
		}
	}
}

package vecmath

// Dense is a square row-major matrix used for assembled systems.
type Dense struct {
	n    int
	data []float64
}

func NewDense(n int) *Dense {
	if n < 0 {
		n = 0
	}
	return &Dense{n: n, data: make([]float64, n*n)}
}

func (d *Dense) Size() int { return d.n }

func (d *Dense) At(i, j int) float64 { return d.data[i*d.n+j] }

// Block returns the 3x3 block whose top-left corner is (base, base).
func (d *Dense) Block(base int) Mat3 {
	var m Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = d.At(base+i, base+j)
		}
	}
	return m
}

func (d *Dense) AddBlock(base int, m Mat3) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d.data[(base+i)*d.n+base+j] += m[i][j]
		}
	}
}

func (d *Dense) Rows() [][]float64 {
	rows := make([][]float64, d.n)
	for i := range rows {
		rows[i] = make([]float64, d.n)
		copy(rows[i], d.data[i*d.n:(i+1)*d.n])
	}
	return rows
}

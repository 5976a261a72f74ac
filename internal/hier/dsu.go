package hier

// dsu — классическая система непересекающихся множеств над MethodID.
// Слияние идемпотентно: повторный union тех же методов ничего не меняет,
// поэтому ромбовидное наследование не порождает дубликатов семейств.
type dsu struct {
	parent []uint32
	rank   []uint8
}

func newDSU(n int) *dsu {
	parent := make([]uint32, n)
	for i := range parent {
		parent[i] = uint32(i)
	}
	return &dsu{
		parent: parent,
		rank:   make([]uint8, n),
	}
}

// find возвращает корень с компрессией пути.
func (d *dsu) find(x uint32) uint32 {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]] // halving
		x = d.parent[x]
	}
	return x
}

func (d *dsu) union(a, b uint32) {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return
	}
	if d.rank[ra] < d.rank[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	if d.rank[ra] == d.rank[rb] {
		d.rank[ra]++
	}
}

package fixed

var (
	Zero  = New(0, 0)
	One   = New(1, 0)
	Two   = New(2, 0)
	Three = New(3, 0)
	Four  = New(4, 0)
	Five  = New(5, 0)
	Ten   = New(10, 0)
)

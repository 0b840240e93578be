package fixed

// Sum, Mean and SampleVariance rescan the whole slice. They are the reference the incremental
// statistics are checked against.

func Sum(points []Point) Point {
	sum := Zero
	for _, point := range points {
		sum = sum.Add(point)
	}
	return sum
}

func Mean(points []Point) Point {
	if len(points) == 0 {
		return Zero
	}
	return Sum(points).DivInt(len(points))
}

func SampleVariance(points []Point) Point {
	if len(points) <= 1 {
		return Zero
	}

	mean := Mean(points)
	sum := Zero
	for _, point := range points {
		diff := point.Sub(mean)
		sum = sum.Add(diff.Mul(diff))
	}

	return sum.DivInt(len(points) - 1)
}

func SampleStdDev(points []Point) Point {
	return SampleVariance(points).Sqrt()
}

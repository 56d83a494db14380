package tensor

import "testing"

func BenchmarkBroadcast(b *testing.B) {
	row := Ones(1, 256)
	mat := Ones(256, 256)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Broadcast(mat, row); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAdd(b *testing.B) {
	x := Ones(256, 256)
	y := Ones(1, 256)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Add(x, y); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSumAxes(b *testing.B) {
	x := Ones(256, 256)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := SumAxes(x, 0); err != nil {
			b.Fatal(err)
		}
	}
}

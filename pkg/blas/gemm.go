package blas

// gemmNN computes C += A*B.
// A: M × K (row-major, ldA ≥ K)
// B: K × N (row-major, ldB ≥ N)
// C: M × N (row-major, ldC ≥ N)
func gemmNN(c, a, b []float32, ldC, ldA, ldB, M, N, K int) {
	pa := 0
	pc := 0
	for i := 0; i < M; i++ {
		for j := 0; j < N; j++ {
			sum := float32(0.0)
			pb := 0
			for k := 0; k < K; k++ {
				sum += a[pa+k] * b[pb+j]
				pb += ldB
			}
			c[pc+j] += sum
		}
		pa += ldA
		pc += ldC
	}
}

// gemmNT computes C += A*B^T.
// B is stored N × K; row j of B is column j of B^T.
func gemmNT(c, a, b []float32, ldC, ldA, ldB, M, N, K int) {
	pa := 0
	pc := 0
	for i := 0; i < M; i++ {
		for j := 0; j < N; j++ {
			sum := float32(0.0)
			pbRow := j * ldB
			for k := 0; k < K; k++ {
				sum += a[pa+k] * b[pbRow+k]
			}
			c[pc+j] += sum
		}
		pa += ldA
		pc += ldC
	}
}

// gemmTN computes C += A^T*B.
// A is stored K × M; column i of A is row i of A^T.
func gemmTN(c, a, b []float32, ldC, ldA, ldB, M, N, K int) {
	pc := 0
	for i := 0; i < M; i++ {
		for j := 0; j < N; j++ {
			sum := float32(0.0)
			pa := i
			pb := j
			for k := 0; k < K; k++ {
				sum += a[pa] * b[pb]
				pa += ldA
				pb += ldB
			}
			c[pc+j] += sum
		}
		pc += ldC
	}
}

// gemmTT computes C += A^T*B^T.
// A is stored K × M, B is stored N × K.
func gemmTT(c, a, b []float32, ldC, ldA, ldB, M, N, K int) {
	pc := 0
	for i := 0; i < M; i++ {
		for j := 0; j < N; j++ {
			sum := float32(0.0)
			pa := i
			pbRow := j * ldB
			for k := 0; k < K; k++ {
				sum += a[pa] * b[pbRow+k]
				pa += ldA
			}
			c[pc+j] += sum
		}
		pc += ldC
	}
}

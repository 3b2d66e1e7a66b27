package kernels

import (
	"math/rand"
	"testing"
)

// Helper function to generate random float32 slices
func generateRandomFloat32(size int) []float32 {
	data := make([]float32, size)
	for i := range data {
		data[i] = rand.Float32()*200 - 100 // Range: -100 to 100
	}
	return data
}

func benchmarkAddPure(b *testing.B, n int) {
	a := generateRandomFloat32(n)
	v := generateRandomFloat32(n)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := range a {
			a[j] += v[j]
		}
	}
}

func benchmarkAddKernel(b *testing.B, n int) {
	a := generateRandomFloat32(n)
	v := generateRandomFloat32(n)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		AddInPlace(a, v)
	}
}

func BenchmarkVectorAdd_Pure_1K(b *testing.B) { benchmarkAddPure(b, 1024) }
func BenchmarkVectorAdd_Kernel_1K(b *testing.B) { benchmarkAddKernel(b, 1024) }
func BenchmarkVectorAdd_Pure_16K(b *testing.B) { benchmarkAddPure(b, 16384) }
func BenchmarkVectorAdd_Kernel_16K(b *testing.B) { benchmarkAddKernel(b, 16384) }
func BenchmarkVectorAdd_Pure_1M(b *testing.B) { benchmarkAddPure(b, 1<<20) }
func BenchmarkVectorAdd_Kernel_1M(b *testing.B) { benchmarkAddKernel(b, 1<<20) }

func BenchmarkFill_1M(b *testing.B) {
	a := make([]float64, 1<<20)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Fill(a, float64(i))
	}
}

func BenchmarkAddScalar_1M(b *testing.B) {
	a := make([]float64, 1<<20)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		AddScalar(a, 1)
	}
}

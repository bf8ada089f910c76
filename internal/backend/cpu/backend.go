// Package cpu implements the pure Go tensor backend.
package cpu

import (
	"fmt"

	"github.com/born-ml/perplexity/internal/parallel"
	"github.com/born-ml/perplexity/internal/tensor"
)

// CPUBackend implements tensor.Backend with plain Go loops. Gather runs in
// parallel across output elements according to its parallel.Config.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// New creates a CPU backend using parallel.DefaultConfig.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with explicit parallelism settings.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device:   tensor.CPU,
		parallel: cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	requireSameDType("mul", a, b)
	outShape := broadcastShape("mul", a, b)
	result := cpu.alloc("mul", outShape, a.DType())

	switch a.DType() {
	case tensor.Float32:
		binaryOp(result, a, b, outShape, func(x, y float32) float32 { return x * y })
	case tensor.Float64:
		binaryOp(result, a, b, outShape, func(x, y float64) float64 { return x * y })
	case tensor.Int32:
		binaryOp(result, a, b, outShape, func(x, y int32) int32 { return x * y })
	case tensor.Int64:
		binaryOp(result, a, b, outShape, func(x, y int64) int64 { return x * y })
	default:
		panic(fmt.Sprintf("mul: unsupported dtype %s", a.DType()))
	}

	return result
}

func (cpu *CPUBackend) alloc(op string, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}

func requireSameDType(op string, a, b *tensor.RawTensor) {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", op, a.DType(), b.DType()))
	}
}

func broadcastShape(op string, a, b *tensor.RawTensor) tensor.Shape {
	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	return outShape
}

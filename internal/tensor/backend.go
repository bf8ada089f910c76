package tensor

// Backend defines the array primitives a compute backend must provide.
// Backends allocate fresh results and never write into their inputs.
//
// Implementations:
//   - cpu: pure Go loops with parallel gather
//   - gonum: the same primitives on gonum's floats and mat packages
type Backend interface {
	// Mul multiplies element-wise with NumPy-style broadcasting.
	Mul(a, b *RawTensor) *RawTensor

	// Comparison operations (element-wise with broadcasting, return bool tensor)
	Equal(a, b *RawTensor) *RawTensor    // a == b
	NotEqual(a, b *RawTensor) *RawTensor // a != b

	// Gather selects elements along dim using an int32 index tensor whose
	// shape matches x except at dim: out[i][j][k] = x[i][j][index[i][j][k]] for dim 2.
	Gather(x *RawTensor, dim int, index *RawTensor) *RawTensor

	// Shape operations
	Unsqueeze(x *RawTensor, dim int) *RawTensor // insert a dimension of size 1
	Squeeze(x *RawTensor, dim int) *RawTensor   // remove a dimension of size 1

	// Cast converts x to another data type.
	Cast(x *RawTensor, dtype DataType) *RawTensor

	// Reduction operations
	Sum(x *RawTensor) *RawTensor                           // total sum, scalar result
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor // sum along dimension

	// Exp computes the element-wise exponential.
	Exp(x *RawTensor) *RawTensor

	// Metadata
	Name() string
	Device() Device
}

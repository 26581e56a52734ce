package circuits

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark/constraint/solver"
)

func init() {
	solver.RegisterHint(DivModHint)
}

// DivModHint 计算 u = q*d + r 的商与余数
//
// 输入 (u, d)，输出 (q, r)；结果在电路中另行约束
func DivModHint(_ *big.Int, inputs []*big.Int, outputs []*big.Int) error {
	if len(inputs) != 2 || len(outputs) != 2 {
		return errors.New("divmod hint: expects 2 inputs and 2 outputs")
	}
	if inputs[1].Sign() == 0 {
		return errors.New("divmod hint: division by zero")
	}
	outputs[0].QuoRem(inputs[0], inputs[1], outputs[1])
	return nil
}

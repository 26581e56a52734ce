package splitproof

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"

	// 基础设施
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/log"

	// gnark ZK库
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/backend/plonk"
	plonkbn254 "github.com/consensys/gnark/backend/plonk/bn254"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/test/unsafekzg"
)

// ============================================================================
// 证明方案抽象
// ============================================================================
//
// 🎯 **目的**：
//   - 统一 Groth16 与 PlonK 的设置、证明、验证与序列化
//   - 证明信封中以一个字节标识方案
//
// ⚠️ **注意**：
//   - PlonK 使用 unsafekzg 生成的开发用 SRS，不可用于生产
//   - 工件持久化需要 CCS/PK/VK 三者的序列化
//
// ============================================================================

// 方案名称
const (
	SchemeGroth16 = "groth16"
	SchemePlonK   = "plonk"
)

// DefaultCurve 默认椭圆曲线
const DefaultCurve = ecc.BN254

// ProvingScheme 证明方案接口
type ProvingScheme interface {
	// SchemeName 返回方案名称
	SchemeName() string

	// SchemeID 返回信封中的方案标识
	SchemeID() byte

	// Setup 生成 proving key 和 verifying key
	Setup(ccs constraint.ConstraintSystem) (ProvingKey, VerifyingKey, error)

	// Prove 生成证明
	Prove(ccs constraint.ConstraintSystem, pk ProvingKey, fullWitness witness.Witness) (Proof, error)

	// Verify 验证证明
	Verify(proof Proof, vk VerifyingKey, publicWitness witness.Witness) error

	// SerializeProof 序列化证明
	SerializeProof(proof Proof) ([]byte, error)

	// DeserializeProof 反序列化证明
	DeserializeProof(data []byte, curveID ecc.ID) (Proof, error)

	// SerializeVerifyingKey 序列化验证密钥
	SerializeVerifyingKey(vk VerifyingKey) ([]byte, error)

	// DeserializeVerifyingKey 反序列化验证密钥
	DeserializeVerifyingKey(data []byte, curveID ecc.ID) (VerifyingKey, error)

	// SerializeProvingKey 序列化证明密钥
	SerializeProvingKey(pk ProvingKey) ([]byte, error)

	// DeserializeProvingKey 反序列化证明密钥
	DeserializeProvingKey(data []byte, curveID ecc.ID) (ProvingKey, error)

	// NewConstraintSystem 创建空约束系统（用于反序列化）
	NewConstraintSystem(curveID ecc.ID) constraint.ConstraintSystem

	// ExportSolidity 导出 Solidity 验证合约
	ExportSolidity(vk VerifyingKey, w io.Writer) error

	// SolidityCalldata 证明的 Solidity 调用数据形式（仅 BN254）
	SolidityCalldata(proof Proof) ([]byte, error)

	// GetBuilder 获取电路构建器
	GetBuilder() frontend.NewBuilder
}

// Proof 证明接口（类型擦除）
type Proof interface{}

// ProvingKey 证明密钥接口（类型擦除）
type ProvingKey interface{}

// VerifyingKey 验证密钥接口（类型擦除）
type VerifyingKey interface{}

// ============================================================================
// Groth16
// ============================================================================

// Groth16Scheme Groth16证明方案实现
type Groth16Scheme struct {
	logger log.Logger
}

// NewGroth16Scheme 创建Groth16证明方案
func NewGroth16Scheme(logger log.Logger) *Groth16Scheme {
	return &Groth16Scheme{logger: logger}
}

// SchemeName 返回方案名称
func (s *Groth16Scheme) SchemeName() string { return SchemeGroth16 }

// SchemeID 信封标识
func (s *Groth16Scheme) SchemeID() byte { return 1 }

// GetBuilder 获取电路构建器
func (s *Groth16Scheme) GetBuilder() frontend.NewBuilder { return r1cs.NewBuilder }

// NewConstraintSystem 创建空R1CS
func (s *Groth16Scheme) NewConstraintSystem(curveID ecc.ID) constraint.ConstraintSystem {
	return groth16.NewCS(curveID)
}

// Setup 生成可信设置
func (s *Groth16Scheme) Setup(ccs constraint.ConstraintSystem) (ProvingKey, VerifyingKey, error) {
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, fmt.Errorf("Groth16 Setup失败: %w", err)
	}
	return pk, vk, nil
}

// Prove 生成证明
func (s *Groth16Scheme) Prove(ccs constraint.ConstraintSystem, pk ProvingKey, fullWitness witness.Witness) (Proof, error) {
	groth16Pk, ok := pk.(groth16.ProvingKey)
	if !ok {
		return nil, fmt.Errorf("无效的Groth16证明密钥类型")
	}
	proof, err := groth16.Prove(ccs, groth16Pk, fullWitness)
	if err != nil {
		return nil, fmt.Errorf("Groth16 Prove失败: %w", err)
	}
	return proof, nil
}

// Verify 验证证明
func (s *Groth16Scheme) Verify(proof Proof, vk VerifyingKey, publicWitness witness.Witness) error {
	groth16Proof, ok := proof.(groth16.Proof)
	if !ok {
		return fmt.Errorf("无效的Groth16证明类型")
	}
	groth16Vk, ok := vk.(groth16.VerifyingKey)
	if !ok {
		return fmt.Errorf("无效的Groth16验证密钥类型")
	}
	return groth16.Verify(groth16Proof, groth16Vk, publicWitness)
}

// SerializeProof 序列化证明
func (s *Groth16Scheme) SerializeProof(proof Proof) ([]byte, error) {
	groth16Proof, ok := proof.(groth16.Proof)
	if !ok {
		return nil, fmt.Errorf("无效的Groth16证明类型")
	}
	return writeToBytes(groth16Proof, "Groth16证明")
}

// DeserializeProof 反序列化证明
func (s *Groth16Scheme) DeserializeProof(data []byte, curveID ecc.ID) (Proof, error) {
	proof := groth16.NewProof(curveID)
	if err := readFromBytes(proof, data, "Groth16证明"); err != nil {
		return nil, err
	}
	return proof, nil
}

// SerializeVerifyingKey 序列化验证密钥
func (s *Groth16Scheme) SerializeVerifyingKey(vk VerifyingKey) ([]byte, error) {
	groth16Vk, ok := vk.(groth16.VerifyingKey)
	if !ok {
		return nil, fmt.Errorf("无效的Groth16验证密钥类型")
	}
	return writeToBytes(groth16Vk, "Groth16验证密钥")
}

// DeserializeVerifyingKey 反序列化验证密钥
func (s *Groth16Scheme) DeserializeVerifyingKey(data []byte, curveID ecc.ID) (VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(curveID)
	if err := readFromBytes(vk, data, "Groth16验证密钥"); err != nil {
		return nil, err
	}
	return vk, nil
}

// SerializeProvingKey 序列化证明密钥
func (s *Groth16Scheme) SerializeProvingKey(pk ProvingKey) ([]byte, error) {
	groth16Pk, ok := pk.(groth16.ProvingKey)
	if !ok {
		return nil, fmt.Errorf("无效的Groth16证明密钥类型")
	}
	return writeToBytes(groth16Pk, "Groth16证明密钥")
}

// DeserializeProvingKey 反序列化证明密钥
func (s *Groth16Scheme) DeserializeProvingKey(data []byte, curveID ecc.ID) (ProvingKey, error) {
	pk := groth16.NewProvingKey(curveID)
	if err := readFromBytes(pk, data, "Groth16证明密钥"); err != nil {
		return nil, err
	}
	return pk, nil
}

// ExportSolidity 导出 Solidity 验证合约
func (s *Groth16Scheme) ExportSolidity(vk VerifyingKey, w io.Writer) error {
	groth16Vk, ok := vk.(groth16.VerifyingKey)
	if !ok {
		return fmt.Errorf("无效的Groth16验证密钥类型")
	}
	return groth16Vk.ExportSolidity(w)
}

// SolidityCalldata 证明的 Solidity 调用数据
func (s *Groth16Scheme) SolidityCalldata(proof Proof) ([]byte, error) {
	p, ok := proof.(*groth16bn254.Proof)
	if !ok {
		return nil, fmt.Errorf("Solidity调用数据仅支持BN254上的Groth16证明")
	}
	return p.MarshalSolidity(), nil
}

// ============================================================================
// PlonK
// ============================================================================

// PlonKScheme PlonK证明方案实现
type PlonKScheme struct {
	logger log.Logger
}

// NewPlonKScheme 创建PlonK证明方案
func NewPlonKScheme(logger log.Logger) *PlonKScheme {
	return &PlonKScheme{logger: logger}
}

// SchemeName 返回方案名称
func (s *PlonKScheme) SchemeName() string { return SchemePlonK }

// SchemeID 信封标识
func (s *PlonKScheme) SchemeID() byte { return 2 }

// GetBuilder 获取电路构建器
func (s *PlonKScheme) GetBuilder() frontend.NewBuilder { return scs.NewBuilder }

// NewConstraintSystem 创建空SCS
func (s *PlonKScheme) NewConstraintSystem(curveID ecc.ID) constraint.ConstraintSystem {
	return plonk.NewCS(curveID)
}

// Setup 生成可信设置
//
// ⚠️ SRS 由 unsafekzg 按约束规模生成，毒性废料已知，仅限开发与测试
func (s *PlonKScheme) Setup(ccs constraint.ConstraintSystem) (ProvingKey, VerifyingKey, error) {
	srs, srsLagrange, err := unsafekzg.NewSRS(ccs)
	if err != nil {
		return nil, nil, fmt.Errorf("生成PlonK SRS失败: %w", err)
	}
	pk, vk, err := plonk.Setup(ccs, srs, srsLagrange)
	if err != nil {
		return nil, nil, fmt.Errorf("PlonK Setup失败: %w", err)
	}
	return pk, vk, nil
}

// Prove 生成证明
func (s *PlonKScheme) Prove(ccs constraint.ConstraintSystem, pk ProvingKey, fullWitness witness.Witness) (Proof, error) {
	plonkPk, ok := pk.(plonk.ProvingKey)
	if !ok {
		return nil, fmt.Errorf("无效的PlonK证明密钥类型")
	}
	proof, err := plonk.Prove(ccs, plonkPk, fullWitness)
	if err != nil {
		return nil, fmt.Errorf("PlonK Prove失败: %w", err)
	}
	return proof, nil
}

// Verify 验证证明
func (s *PlonKScheme) Verify(proof Proof, vk VerifyingKey, publicWitness witness.Witness) error {
	plonkProof, ok := proof.(plonk.Proof)
	if !ok {
		return fmt.Errorf("无效的PlonK证明类型")
	}
	plonkVk, ok := vk.(plonk.VerifyingKey)
	if !ok {
		return fmt.Errorf("无效的PlonK验证密钥类型")
	}
	return plonk.Verify(plonkProof, plonkVk, publicWitness)
}

// SerializeProof 序列化证明
func (s *PlonKScheme) SerializeProof(proof Proof) ([]byte, error) {
	plonkProof, ok := proof.(plonk.Proof)
	if !ok {
		return nil, fmt.Errorf("无效的PlonK证明类型")
	}
	return writeToBytes(plonkProof, "PlonK证明")
}

// DeserializeProof 反序列化证明
func (s *PlonKScheme) DeserializeProof(data []byte, curveID ecc.ID) (Proof, error) {
	proof := plonk.NewProof(curveID)
	if err := readFromBytes(proof, data, "PlonK证明"); err != nil {
		return nil, err
	}
	return proof, nil
}

// SerializeVerifyingKey 序列化验证密钥
func (s *PlonKScheme) SerializeVerifyingKey(vk VerifyingKey) ([]byte, error) {
	plonkVk, ok := vk.(plonk.VerifyingKey)
	if !ok {
		return nil, fmt.Errorf("无效的PlonK验证密钥类型")
	}
	return writeToBytes(plonkVk, "PlonK验证密钥")
}

// DeserializeVerifyingKey 反序列化验证密钥
func (s *PlonKScheme) DeserializeVerifyingKey(data []byte, curveID ecc.ID) (VerifyingKey, error) {
	vk := plonk.NewVerifyingKey(curveID)
	if err := readFromBytes(vk, data, "PlonK验证密钥"); err != nil {
		return nil, err
	}
	return vk, nil
}

// SerializeProvingKey 序列化证明密钥
func (s *PlonKScheme) SerializeProvingKey(pk ProvingKey) ([]byte, error) {
	plonkPk, ok := pk.(plonk.ProvingKey)
	if !ok {
		return nil, fmt.Errorf("无效的PlonK证明密钥类型")
	}
	return writeToBytes(plonkPk, "PlonK证明密钥")
}

// DeserializeProvingKey 反序列化证明密钥
func (s *PlonKScheme) DeserializeProvingKey(data []byte, curveID ecc.ID) (ProvingKey, error) {
	pk := plonk.NewProvingKey(curveID)
	if err := readFromBytes(pk, data, "PlonK证明密钥"); err != nil {
		return nil, err
	}
	return pk, nil
}

// ExportSolidity 导出 Solidity 验证合约
func (s *PlonKScheme) ExportSolidity(vk VerifyingKey, w io.Writer) error {
	plonkVk, ok := vk.(plonk.VerifyingKey)
	if !ok {
		return fmt.Errorf("无效的PlonK验证密钥类型")
	}
	return plonkVk.ExportSolidity(w)
}

// SolidityCalldata 证明的 Solidity 调用数据
func (s *PlonKScheme) SolidityCalldata(proof Proof) ([]byte, error) {
	p, ok := proof.(*plonkbn254.Proof)
	if !ok {
		return nil, fmt.Errorf("Solidity调用数据仅支持BN254上的PlonK证明")
	}
	return p.MarshalSolidity(), nil
}

// ============================================================================
// 序列化辅助
// ============================================================================

func writeToBytes(w io.WriterTo, what string) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("序列化%s失败: %w", what, err)
	}
	return buf.Bytes(), nil
}

func readFromBytes(r io.ReaderFrom, data []byte, what string) error {
	if len(data) == 0 {
		return fmt.Errorf("反序列化%s失败: 空数据", what)
	}
	if _, err := r.ReadFrom(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("反序列化%s失败: %w", what, err)
	}
	return nil
}

// ============================================================================
// 方案注册表
// ============================================================================

// ProvingSchemeRegistry 证明方案注册表
type ProvingSchemeRegistry struct {
	logger  log.Logger
	schemes map[string]ProvingScheme
	byID    map[byte]ProvingScheme
	mutex   sync.RWMutex
}

// NewProvingSchemeRegistry 创建证明方案注册表，默认注册 Groth16 与 PlonK
func NewProvingSchemeRegistry(logger log.Logger) *ProvingSchemeRegistry {
	registry := &ProvingSchemeRegistry{
		logger:  logger,
		schemes: make(map[string]ProvingScheme),
		byID:    make(map[byte]ProvingScheme),
	}
	registry.RegisterScheme(NewGroth16Scheme(logger))
	registry.RegisterScheme(NewPlonKScheme(logger))
	return registry
}

// RegisterScheme 注册证明方案
func (r *ProvingSchemeRegistry) RegisterScheme(scheme ProvingScheme) {
	if scheme == nil {
		return
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.schemes[scheme.SchemeName()] = scheme
	r.byID[scheme.SchemeID()] = scheme

	if r.logger != nil {
		r.logger.Debugf("注册证明方案: %s", scheme.SchemeName())
	}
}

// GetScheme 按名称获取证明方案
func (r *ProvingSchemeRegistry) GetScheme(schemeName string) (ProvingScheme, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	scheme, exists := r.schemes[schemeName]
	if !exists {
		return nil, fmt.Errorf("未注册的证明方案: %s", schemeName)
	}
	return scheme, nil
}

// GetSchemeByID 按信封标识获取证明方案
func (r *ProvingSchemeRegistry) GetSchemeByID(id byte) (ProvingScheme, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	scheme, exists := r.byID[id]
	if !exists {
		return nil, fmt.Errorf("未注册的证明方案标识: %d", id)
	}
	return scheme, nil
}

// ListSchemes 列出所有注册的方案（按名称排序）
func (r *ProvingSchemeRegistry) ListSchemes() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	schemes := make([]string, 0, len(r.schemes))
	for name := range r.schemes {
		schemes = append(schemes, name)
	}
	sort.Strings(schemes)
	return schemes
}

// IsSchemeSupported 检查方案是否支持
func (r *ProvingSchemeRegistry) IsSchemeSupported(schemeName string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	_, exists := r.schemes[schemeName]
	return exists
}

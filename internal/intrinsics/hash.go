package intrinsics

import (
	"encoding/binary"
	"math"

	"golang.org/x/crypto/blake2b"

	"exprc/internal/registry"
	"exprc/internal/types"
)

// hashBytes keys a BLAKE2b-256 digest with the (perturbable) seed so
// hash32/hash64 can be re-salted per call site without a stateful holder —
// the seed is an ordinary literal operand, not precomputed state.
func hashBytes(b []byte, seed int64) []byte {
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], uint64(seed))
	h, err := blake2b.New256(key[:])
	if err != nil {
		// key is always exactly 8 bytes, well under blake2b's 64-byte limit.
		panic("intrinsics: unexpected blake2b keying failure: " + err.Error())
	}
	h.Write(b)
	return h.Sum(nil)
}

// cellBytes renders a decoded cell value into the canonical byte form used
// for hashing, so that numerically-equal cells of different kinds (e.g.
// int32 5 and float64 5.0) hash identically (spec §6.4 "hash functions").
func cellBytes(k types.Kind, v interface{}) []byte {
	switch {
	case k.ID == types.Boolean:
		if v.(bool) {
			return []byte{1}
		}
		return []byte{0}
	case k.ID == types.UTF8 || k.ID == types.Binary:
		return v.([]byte)
	case k.IsFloat():
		f := toF64(v)
		var b [8]byte
		if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			// An integral float hashes as the equal int64 value.
			binary.LittleEndian.PutUint64(b[:], uint64(int64(f)))
			return b[:]
		}
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(f))
		return b[:]
	default:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(toI64(v)))
		return b[:]
	}
}

// registerHash implements hash32/hash64 across every kind (spec §6.4,
// supplemented from original_source/'s gandiva hash generator: a null
// input hashes to 0 rather than propagating nullity, and the function
// never itself fails).
func registerHash(reg *registry.Registry) {
	for _, k := range allKinds {
		k := k
		reg.Register(registry.Entry{
			Signature: registry.FunctionSignature{Name: "hash32", ParamKinds: []types.Kind{k}, ReturnKind: types.NewInt32()},
			LinkName:  "hash32_" + k.String(),
			Null:      registry.NullInternal,
			Impl: func(ctx *registry.ExecContext, h interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
				if len(argValid) > 0 && !argValid[0] {
					return int64(0), true, nil
				}
				digest := hashBytes(cellBytes(k, args[0]), 0)
				return int64(int32(binary.LittleEndian.Uint32(digest[:4]))), true, nil
			},
		})
		reg.Register(registry.Entry{
			Signature: registry.FunctionSignature{Name: "hash32", ParamKinds: []types.Kind{k, types.NewInt32()}, ReturnKind: types.NewInt32()},
			LinkName:  "hash32_" + k.String() + "_seeded",
			Null:      registry.NullInternal,
			Impl: func(ctx *registry.ExecContext, h interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
				seed := toI64(args[1])
				if len(argValid) > 0 && !argValid[0] {
					return int64(0), true, nil
				}
				digest := hashBytes(cellBytes(k, args[0]), seed)
				return int64(int32(binary.LittleEndian.Uint32(digest[:4]))), true, nil
			},
		})
		reg.Register(registry.Entry{
			Signature: registry.FunctionSignature{Name: "hash64", ParamKinds: []types.Kind{k}, ReturnKind: types.NewInt64()},
			LinkName:  "hash64_" + k.String(),
			Null:      registry.NullInternal,
			Impl: func(ctx *registry.ExecContext, h interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
				if len(argValid) > 0 && !argValid[0] {
					return int64(0), true, nil
				}
				digest := hashBytes(cellBytes(k, args[0]), 0)
				return int64(binary.LittleEndian.Uint64(digest[:8])), true, nil
			},
		})
		reg.Register(registry.Entry{
			Signature: registry.FunctionSignature{Name: "hash64", ParamKinds: []types.Kind{k, types.NewInt64()}, ReturnKind: types.NewInt64()},
			LinkName:  "hash64_" + k.String() + "_seeded",
			Null:      registry.NullInternal,
			Impl: func(ctx *registry.ExecContext, h interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
				seed := toI64(args[1])
				if len(argValid) > 0 && !argValid[0] {
					return int64(0), true, nil
				}
				digest := hashBytes(cellBytes(k, args[0]), seed)
				return int64(binary.LittleEndian.Uint64(digest[:8])), true, nil
			},
		})
	}
}

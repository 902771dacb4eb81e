package kotlin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktbind-build/ktbind/internal/bindgen"
)

var testInterface = &bindgen.ComponentInterface{
	Namespace: "counter",
	CrateName: "counter",
	Records: []bindgen.Record{
		{Name: "Point", Fields: []bindgen.Field{{Name: "x", Type: "f64"}, {Name: "y", Type: "f64"}}},
	},
	Enums: []bindgen.Enum{
		{Name: "Direction", Variants: []string{"UP", "DOWN"}},
	},
	Functions: []bindgen.Function{
		{Name: "add", Args: []bindgen.Field{{Name: "a", Type: "u32"}, {Name: "b", Type: "u32"}}, Return: "u32"},
	},
}

func TestRenderSingleTargetOnlyCommon(t *testing.T) {
	cfg := &bindgen.Config{PackageName: "com.example.counter", CdylibName: "uniffi_counter"}
	bundle, err := New().Render(cfg, testInterface)
	require.NoError(t, err)

	assert.NotEmpty(t, bundle.Common)
	assert.Empty(t, bundle.Jvm)
	assert.Empty(t, bundle.Android)
	assert.Empty(t, bundle.Native)
	assert.Empty(t, bundle.Stub)
	assert.Empty(t, bundle.Header)

	// single-target sources are concrete, not expect declarations
	assert.NotContains(t, bundle.Common, "expect fun")
	assert.Contains(t, bundle.Common, "package com.example.counter")
	assert.Contains(t, bundle.Common, `System.loadLibrary("uniffi_counter")`)
}

func TestRenderMultiplatformSelectsTargets(t *testing.T) {
	cfg := &bindgen.Config{
		PackageName:   "com.example.counter",
		CdylibName:    "uniffi_counter",
		Multiplatform: true,
		Targets:       []bindgen.Target{bindgen.TargetJvm, bindgen.TargetNative},
	}
	bundle, err := New().Render(cfg, testInterface)
	require.NoError(t, err)

	assert.Contains(t, bundle.Common, "expect fun add(a: UInt, b: UInt): UInt")
	assert.Contains(t, bundle.Jvm, "actual fun add")
	assert.Empty(t, bundle.Android, "android was not selected")
	assert.Contains(t, bundle.Native, "actual fun add")
	assert.Contains(t, bundle.Header, "uint32_t counter_add(uint32_t a, uint32_t b);")
}

func TestRenderHeaderOnlyForNative(t *testing.T) {
	cfg := &bindgen.Config{
		Multiplatform: true,
		Targets:       []bindgen.Target{bindgen.TargetJvm, bindgen.TargetAndroid},
	}
	bundle, err := New().Render(cfg, testInterface)
	require.NoError(t, err)

	assert.Empty(t, bundle.Header)
	assert.NotEmpty(t, bundle.Jvm)
	assert.NotEmpty(t, bundle.Android)
}

func TestRenderStub(t *testing.T) {
	cfg := &bindgen.Config{
		Multiplatform: true,
		Targets:       []bindgen.Target{bindgen.TargetJvm},
		GenerateStub:  true,
	}
	bundle, err := New().Render(cfg, testInterface)
	require.NoError(t, err)

	assert.Contains(t, bundle.Stub, "NotImplementedError")
	assert.Contains(t, bundle.Stub, "actual fun add")
}

func TestRenderRecordsAndEnums(t *testing.T) {
	cfg := &bindgen.Config{Multiplatform: true, Targets: []bindgen.Target{bindgen.TargetJvm}}
	bundle, err := New().Render(cfg, testInterface)
	require.NoError(t, err)

	assert.Contains(t, bundle.Common, "data class Point(val x: Double, val y: Double)")
	assert.Contains(t, bundle.Common, "enum class Direction { UP, DOWN }")
}

func TestExternalTypeResolvesThroughPackageMap(t *testing.T) {
	ci := &bindgen.ComponentInterface{
		Namespace: "todolist",
		CrateName: "todolist",
		Functions: []bindgen.Function{
			{Name: "move_to", Args: []bindgen.Field{{Name: "p", Type: "geometry.Point"}}},
		},
	}
	cfg := &bindgen.Config{
		Multiplatform:    true,
		Targets:          []bindgen.Target{bindgen.TargetJvm},
		ExternalPackages: map[string]string{"geometry": "com.example.geometry"},
	}

	bundle, err := New().Render(cfg, ci)
	require.NoError(t, err)
	assert.Contains(t, bundle.Common, "p: com.example.geometry.Point")
}

func TestUnknownCrateInRecordFieldFails(t *testing.T) {
	ci := &bindgen.ComponentInterface{
		Namespace: "todolist",
		CrateName: "todolist",
		Records: []bindgen.Record{
			{Name: "Item", Fields: []bindgen.Field{{Name: "p", Type: "geometry.Point"}}},
		},
	}
	cfg := &bindgen.Config{Multiplatform: true, Targets: []bindgen.Target{bindgen.TargetJvm}}

	bundle, err := New().Render(cfg, ci)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown crate "geometry"`)
	assert.Contains(t, err.Error(), "record Item")
	assert.Nil(t, bundle, "unresolved names must never leak into output")
}

func TestUnknownCrateInMethodArgFails(t *testing.T) {
	ci := &bindgen.ComponentInterface{
		Namespace: "todolist",
		CrateName: "todolist",
		Objects: []bindgen.Object{
			{Name: "List", Methods: []bindgen.Function{
				{Name: "insert", Args: []bindgen.Field{{Name: "p", Type: "geometry.Point"}}},
			}},
		},
	}
	cfg := &bindgen.Config{Multiplatform: true, Targets: []bindgen.Target{bindgen.TargetJvm}}

	_, err := New().Render(cfg, ci)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown crate "geometry"`)
	assert.Contains(t, err.Error(), "List.insert")
}

func TestUnknownCrateInReturnTypeFails(t *testing.T) {
	ci := &bindgen.ComponentInterface{
		Namespace: "todolist",
		CrateName: "todolist",
		Functions: []bindgen.Function{
			{Name: "origin", Return: "geometry.Point"},
		},
	}
	cfg := &bindgen.Config{}

	_, err := New().Render(cfg, ci)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown crate "geometry"`)
	assert.Contains(t, err.Error(), "return type")
}

func TestExternalTypeUnknownCrateFails(t *testing.T) {
	ci := &bindgen.ComponentInterface{
		Namespace: "todolist",
		CrateName: "todolist",
		Functions: []bindgen.Function{
			{Name: "move_to", Args: []bindgen.Field{{Name: "p", Type: "geometry.Point"}}},
		},
	}
	cfg := &bindgen.Config{Multiplatform: true, Targets: []bindgen.Target{bindgen.TargetJvm}}

	_, err := New().Render(cfg, ci)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown crate "geometry"`)
}

func TestRenderedSourcesShareOnePackage(t *testing.T) {
	cfg := &bindgen.Config{
		PackageName:   "com.example.counter",
		Multiplatform: true,
		Targets:       []bindgen.Target{bindgen.TargetJvm, bindgen.TargetAndroid, bindgen.TargetNative},
		GenerateStub:  true,
	}
	bundle, err := New().Render(cfg, testInterface)
	require.NoError(t, err)

	for _, blob := range []string{bundle.Common, bundle.Jvm, bundle.Android, bundle.Native, bundle.Stub} {
		require.NotEmpty(t, blob)
		assert.True(t, strings.Contains(blob, "package com.example.counter"))
	}
}

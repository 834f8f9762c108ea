// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build unix

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/icc"
	"code.hybscloud.com/icc/shm"
)

func seedRegions(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	d := shm.NewDir(dir)

	q, err := icc.CreateQueue[int64](d, "ticks", 16, icc.KindMPMC)
	require.NoError(t, err)
	t.Cleanup(func() { q.Close() })
	p := q.Producer()
	for i := range int64(3) {
		p.Produce(&i)
	}

	v, err := icc.CreateVector[[3]int64](d, "quotes", 10)
	require.NoError(t, err)
	t.Cleanup(func() { v.Close() })
	return dir
}

func TestRunReport(t *testing.T) {
	dir := seedRegions(t)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"-dir", dir, "ticks", "quotes"}, &stdout, &stderr)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"NAME", "KIND", "SLOTS", "SLOT_BYTES", "PRODUCED"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"ticks", "MPMC", "16", "16", "3"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"quotes", "Vector", "10", "32", "-"}, strings.Fields(lines[2]))
}

func TestRunMissingRegion(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-dir", dir, "nope"}, &stdout, &stderr)
	assert.Error(t, err)
}

func TestRunInterval(t *testing.T) {
	dir := seedRegions(t)
	var stdout, stderr bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	err := run(ctx, []string{"-dir", dir, "-interval", "20ms", "ticks"}, &stdout, &stderr)
	require.NoError(t, err)

	// One initial report plus at least one tick
	assert.GreaterOrEqual(t, strings.Count(stdout.String(), "NAME"), 2)
	assert.Contains(t, stderr.String(), "stopping")
}

func TestRunVersionAndFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-version"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), Version)

	err := run(context.Background(), nil, &stdout, &stderr)
	assert.ErrorContains(t, err, "region name")

	err = run(context.Background(), []string{"-interval", "-1s", "x"}, &stdout, &stderr)
	assert.ErrorContains(t, err, "negative")

	err = run(context.Background(), []string{"-h"}, &stdout, &stderr)
	assert.True(t, errors.Is(err, flag.ErrHelp))
}

func TestParseFlagsEnv(t *testing.T) {
	t.Setenv("ICC_DIR", "/tmp/regions")
	t.Setenv("ICC_INTERVAL", "2s")
	t.Setenv("ICC_NAMESPACE", "trading")

	cfg, err := parseFlags([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/regions", cfg.Dir)
	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.Equal(t, "trading", cfg.Namespace)
	assert.Equal(t, []string{"a", "b"}, cfg.Names)

	// Flags override the environment
	cfg, err = parseFlags([]string{"-dir", "/other", "a"})
	require.NoError(t, err)
	assert.Equal(t, "/other", cfg.Dir)
}

func TestTargetStatsUninitialized(t *testing.T) {
	dir := t.TempDir()
	d := shm.NewDir(dir)
	r, err := d.Create("raw", 64)
	require.NoError(t, err)
	defer r.Close()

	tg := &target{name: "raw", region: r}
	assert.Equal(t, icc.KindUnknown, tg.Stats().Kind)

	var stdout bytes.Buffer
	require.NoError(t, report(&stdout, []*target{tg}))
	assert.Contains(t, stdout.String(), icc.ErrUninitialized.Error())
}

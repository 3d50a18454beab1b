package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpsoftworks/todo/pkg/types"
)

func tags(path []schema) []string {
	out := make([]string, len(path))
	for i, s := range path {
		out[i] = s.tag
	}
	return out
}

func TestChainIsValid(t *testing.T) {
	require.NoError(t, validateChain(chain))
	assert.Equal(t, tagV3, CurrentVersion())
	assert.Equal(t, []string{tagV1, tagV2, tagV3}, Versions())
}

func TestValidateChainRejectsMalformedChains(t *testing.T) {
	noop := func(prev dataset) (dataset, error) { return prev, nil }

	tests := []struct {
		name  string
		chain []schema
	}{
		{name: "empty", chain: nil},
		{
			name: "sequence not increasing",
			chain: []schema{
				{seq: 2, tag: "a", parse: parseV1},
				{seq: 1, tag: "b", parse: parseV2, upgrade: noop},
			},
		},
		{
			name: "duplicate tag",
			chain: []schema{
				{seq: 1, tag: "a", parse: parseV1},
				{seq: 2, tag: "a", parse: parseV2, upgrade: noop},
			},
		},
		{
			name: "missing upgrade",
			chain: []schema{
				{seq: 1, tag: "a", parse: parseV1},
				{seq: 2, tag: "b", parse: parseV2},
			},
		},
		{
			name: "oldest declares upgrade",
			chain: []schema{
				{seq: 1, tag: "a", parse: parseV1, upgrade: noop},
			},
		},
		{
			name:  "missing parser",
			chain: []schema{{seq: 1, tag: "a"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, validateChain(tt.chain))
		})
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		target  string
		want    []string
		wantErr error
	}{
		{name: "already current", source: tagV3, target: tagV3, want: []string{tagV3}},
		{name: "one step", source: tagV2, target: tagV3, want: []string{tagV2, tagV3}},
		{name: "full chain", source: tagV1, target: tagV3, want: []string{tagV1, tagV2, tagV3}},
		{name: "partial target", source: tagV1, target: tagV2, want: []string{tagV1, tagV2}},
		{name: "unknown source", source: "todo/9", target: tagV3, wantErr: types.ErrUnknownVersion},
		{name: "empty source", source: "", target: tagV3, wantErr: types.ErrUnknownVersion},
		{name: "unknown target", source: tagV1, target: "todo/9", wantErr: types.ErrMigrationPath},
		{name: "target before source", source: tagV3, target: tagV1, wantErr: types.ErrMigrationPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := resolvePath(chain, tt.source, tt.target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tags(path))
		})
	}
}

func TestResolvePathRejectsMisorderedChain(t *testing.T) {
	misordered := []schema{
		{seq: 1, tag: tagV1, parse: parseV1},
		{seq: 3, tag: tagV3, parse: parseV3, upgrade: upgradeV3},
		{seq: 2, tag: tagV2, parse: parseV2, upgrade: upgradeV2},
	}
	_, err := resolvePath(misordered, tagV1, tagV2)
	assert.ErrorIs(t, err, types.ErrMigrationPath)
}

func TestMigrateShortPathsAreNoOps(t *testing.T) {
	ds := &v3Dataset{tasks: []types.Task{{ID: 1, Title: "a", Status: types.StatusOpen}}}

	got, err := migrate(ds, nil)
	require.NoError(t, err)
	assert.Same(t, ds, got)

	got, err = migrate(ds, chain[2:])
	require.NoError(t, err)
	assert.Same(t, ds, got)
}

func TestMigrateRejectsPathNotStartingAtData(t *testing.T) {
	ds := &v1Dataset{}
	_, err := migrate(ds, chain[1:])
	assert.ErrorIs(t, err, types.ErrMigrationPath)
}

func TestMigrateV1ToCurrent(t *testing.T) {
	src := &v1Dataset{tasks: []v1Task{
		{id: 1, title: "buy milk", createdAt: "01/02 10:00", status: "open"},
		{id: 4, title: "pay rent, today", createdAt: "02/02 11:30", status: "done"},
		{id: 7, title: "", createdAt: "", status: "someday"},
	}}

	path, err := resolvePath(chain, tagV1, CurrentVersion())
	require.NoError(t, err)
	got, err := migrate(src, path)
	require.NoError(t, err)

	v3, ok := got.(*v3Dataset)
	require.True(t, ok, "migration must end in the current format")
	assert.Equal(t, []types.Task{
		{ID: 1, Title: "buy milk", CreatedAt: "01/02 10:00", Status: types.StatusOpen},
		{ID: 4, Title: "pay rent, today", CreatedAt: "02/02 11:30", Status: types.StatusDone, CompletedAt: "02/02 11:30"},
		{ID: 7, Title: "", CreatedAt: "", Status: types.StatusOpen},
	}, v3.tasks)
}

// Every adjacent pair must upgrade whatever the predecessor can parse.
func TestUpgradeTotality(t *testing.T) {
	bodies := map[string][]string{
		tagV1: {
			"1,plain,01/01 00:00,open",
			"2,,,",
			`3,comma\, inside,,DONE`,
			"4,weird status,x,???",
		},
		tagV2: {
			"1,plain,01/01 00:00,open,",
			"2,,,,",
			"3,finished,01/01 00:00,done,02/01 00:00",
			"4,bogus,x,later,y",
		},
	}

	for i := 1; i < len(chain); i++ {
		prev, next := chain[i-1], chain[i]
		t.Run(prev.tag+"->"+next.tag, func(t *testing.T) {
			ds, err := prev.parse(bodies[prev.tag])
			require.NoError(t, err)

			up, err := next.upgrade(ds)
			require.NoError(t, err)
			assert.Equal(t, next.tag, up.version())
			assert.Len(t, up.records(), len(bodies[prev.tag]))

			// The upgraded dataset must be readable by its own parser.
			reparsed, err := next.parse(up.records())
			require.NoError(t, err)
			assert.Equal(t, up, reparsed)
		})
	}
}

func TestUpgradeRejectsWrongPredecessor(t *testing.T) {
	_, err := upgradeV3(&v1Dataset{})
	assert.Error(t, err)
	_, err = upgradeV2(&v3Dataset{})
	assert.Error(t, err)
}

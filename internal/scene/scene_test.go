package scene

import (
	gomath "math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-rig/internal/skeleton"
	"github.com/Faultbox/midgard-rig/internal/transform"
	"github.com/Faultbox/midgard-rig/pkg/math"
)

func spawn(t *testing.T, s *Scene, name string, parent EntityID, pos math.Vec3) EntityID {
	t.Helper()
	var node transform.NodeRef
	if parent != "" {
		var err error
		node, err = s.Node(parent)
		require.NoError(t, err)
	}
	id, err := s.Spawn(name, transform.At(node, pos))
	require.NoError(t, err)
	return id
}

func worldPos(t *testing.T, s *Scene, node transform.NodeRef) math.Vec3 {
	t.Helper()
	p, err := s.Graph().WorldPosition(node)
	require.NoError(t, err)
	return p
}

func TestSpawn(t *testing.T) {
	s := New()
	root := spawn(t, s, "player", "", math.Vec3{X: 5})
	child := spawn(t, s, "sword", root, math.Vec3{X: 1})

	_, err := uuid.Parse(string(root))
	assert.NoError(t, err, "entity ids are uuids")
	assert.NotEqual(t, root, child)
	assert.Equal(t, 2, s.Len())

	name, err := s.Name(child)
	require.NoError(t, err)
	assert.Equal(t, "sword", name)

	node, err := s.Node(child)
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{X: 6}, worldPos(t, s, node))

	owner, ok := s.EntityAt(node)
	assert.True(t, ok)
	assert.Equal(t, child, owner)

	require.NoError(t, s.Rename(child, "axe"))
	name, _ = s.Name(child)
	assert.Equal(t, "axe", name)

	_, err = s.Name("nope")
	assert.ErrorIs(t, err, ErrUnknownEntity)
	_, err = s.Spawn("orphan", transform.At(transform.NodeRef{}, math.Vec3{}))
	assert.NoError(t, err)
}

func TestDespawn(t *testing.T) {
	s := New()
	root := spawn(t, s, "root", "", math.Vec3{})
	mid := spawn(t, s, "mid", root, math.Vec3{})
	leaf := spawn(t, s, "leaf", mid, math.Vec3{})
	other := spawn(t, s, "other", "", math.Vec3{})

	assert.ErrorIs(t, s.Despawn(root, false), transform.ErrHasChildren)
	assert.Equal(t, 4, s.Len())

	require.NoError(t, s.Despawn(leaf, false))
	_, err := s.Node(leaf)
	assert.ErrorIs(t, err, ErrUnknownEntity)

	require.NoError(t, s.Despawn(root, true))
	assert.Equal(t, 1, s.Len())
	_, err = s.Node(mid)
	assert.ErrorIs(t, err, ErrUnknownEntity)
	_, err = s.Node(other)
	assert.NoError(t, err)
	assert.Equal(t, 1, s.Graph().Len())
}

func TestReparent(t *testing.T) {
	s := New()
	a := spawn(t, s, "a", "", math.Vec3{X: 1})
	b := spawn(t, s, "b", "", math.Vec3{Y: 2})
	c := spawn(t, s, "c", a, math.Vec3{Z: 3})

	node, _ := s.Node(c)
	before := worldPos(t, s, node)
	require.NoError(t, s.Reparent(c, b))
	assert.True(t, worldPos(t, s, node).ApproxEqual(before, 1e-6))

	assert.ErrorIs(t, s.Reparent(b, c), transform.ErrCycleDetected)
	require.NoError(t, s.Reparent(c, ""))
	parent, err := s.Graph().Parent(node)
	require.NoError(t, err)
	assert.True(t, parent.IsZero())

	assert.ErrorIs(t, s.Reparent(c, "ghost"), ErrUnknownEntity)
}

func TestFindNamed(t *testing.T) {
	s := New()
	town := spawn(t, s, "town", "", math.Vec3{})
	guard1 := spawn(t, s, "guard", town, math.Vec3{})
	guard2 := spawn(t, s, "guard", town, math.Vec3{})
	gate := spawn(t, s, "gate", town, math.Vec3{})
	spawn(t, s, "guard", gate, math.Vec3{})

	id, ok, err := s.FindFirstNamed("", "town")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, town, id)

	_, ok, err = s.FindFirstNamed("", "guard")
	require.NoError(t, err)
	assert.False(t, ok, "roots only")

	all, err := s.FindAllNamed(town, "guard")
	require.NoError(t, err)
	assert.ElementsMatch(t, []EntityID{guard1, guard2}, all, "grandchildren are not searched")

	_, err = s.FindAllNamed("ghost", "guard")
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func armSkeleton(t *testing.T) *skeleton.Skeleton {
	t.Helper()
	rest := func(x, y float32) math.Transform {
		tr := math.IdentityTransform()
		tr.Position = math.Vec3{X: x, Y: y}
		return tr
	}
	// Child listed before its parent.
	skel, err := skeleton.FromRecords([]skeleton.Record{
		{Name: "hand", ParentName: "arm", Rest: rest(2, 0)},
		{Name: "arm", ParentName: "shoulder", Rest: rest(1, 0)},
		{Name: "shoulder", Rest: rest(0, 1)},
	})
	require.NoError(t, err)
	return skel
}

func TestBindSkeleton(t *testing.T) {
	s := New()
	hero := spawn(t, s, "hero", "", math.Vec3{Z: 10})
	skel := armSkeleton(t)

	require.NoError(t, s.BindSkeleton(hero, skel))
	assert.ErrorIs(t, s.BindSkeleton(hero, skel), ErrAlreadyBound)

	got, err := s.Skeleton(hero)
	require.NoError(t, err)
	assert.Same(t, skel, got)

	hand, err := s.JointNode(hero, "hand")
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{X: 3, Y: 1, Z: 10}, worldPos(t, s, hand))

	_, err = s.JointNode(hero, "tail")
	assert.ErrorIs(t, err, skeleton.ErrInvalidJoint)

	assert.ErrorIs(t, s.Despawn(hero, false), transform.ErrHasChildren)
}

func TestSyncJointsMovesAttachments(t *testing.T) {
	s := New()
	hero := spawn(t, s, "hero", "", math.Vec3{})
	skel := armSkeleton(t)
	require.NoError(t, s.BindSkeleton(hero, skel))

	hand, err := s.JointNode(hero, "hand")
	require.NoError(t, err)
	sword, err := s.Spawn("sword", transform.At(hand, math.Vec3{Y: 1}))
	require.NoError(t, err)
	swordNode, _ := s.Node(sword)
	assert.True(t, worldPos(t, s, swordNode).ApproxEqual(math.Vec3{X: 3, Y: 2}, 1e-6))

	// Swing the arm a quarter turn about Z: the hand offset now points up.
	arm, _ := skel.JointIndex("arm")
	turn := math.QuatFromAxisAngle(math.Vec3{Z: 1}, float32(gomath.Pi/2))
	require.NoError(t, skel.SetJointLocal(arm, math.Compose(math.Vec3{X: 1}, turn, math.Vec3One())))
	require.NoError(t, s.SyncAll())

	handWorld := worldPos(t, s, hand)
	assert.True(t, handWorld.ApproxEqual(math.Vec3{X: 1, Y: 3}, 1e-5), "hand %v", handWorld)
	assert.True(t, worldPos(t, s, swordNode).ApproxEqual(math.Vec3{Y: 3}, 1e-5), "sword follows the hand")

	// Joint nodes agree with the skeleton's own final transforms.
	handIdx, _ := skel.JointIndex("hand")
	assert.True(t, handWorld.ApproxEqual(skel.FinalTransforms()[handIdx].Translation(), 1e-5))
}

func TestUnbindSkeleton(t *testing.T) {
	s := New()
	hero := spawn(t, s, "hero", "", math.Vec3{})
	require.NoError(t, s.BindSkeleton(hero, armSkeleton(t)))
	hand, _ := s.JointNode(hero, "hand")
	sword, err := s.Spawn("sword", transform.At(hand, math.Vec3{}))
	require.NoError(t, err)

	assert.ErrorIs(t, s.SyncJoints(spawn(t, s, "prop", "", math.Vec3{})), ErrNotBound)

	require.NoError(t, s.UnbindSkeleton(hero))
	_, err = s.Node(sword)
	assert.ErrorIs(t, err, ErrUnknownEntity, "attachments go with the joints")
	assert.ErrorIs(t, s.UnbindSkeleton(hero), ErrNotBound)

	require.NoError(t, s.Despawn(hero, false))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, s.Graph().Len())
}

func TestDespawnCascadeWithSkeleton(t *testing.T) {
	s := New()
	hero := spawn(t, s, "hero", "", math.Vec3{})
	require.NoError(t, s.BindSkeleton(hero, armSkeleton(t)))
	hand, _ := s.JointNode(hero, "hand")
	_, err := s.Spawn("sword", transform.At(hand, math.Vec3{}))
	require.NoError(t, err)

	require.NoError(t, s.Despawn(hero, true))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.Graph().Len())
}

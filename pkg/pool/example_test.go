package pool_test

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tagpool/pkg/pool"
)

type bullet struct {
	active bool
	pose   pool.Pose
	tag    string
}

func (b *bullet) Active() bool          { return b.active }
func (b *bullet) SetActive(active bool) { b.active = active }
func (b *bullet) SetPose(p pool.Pose)   { b.pose = p }
func (b *bullet) SetPoolTag(tag string) { b.tag = tag }
func (b *bullet) OnSpawn()              {}

func Example() {
	proto := pool.NewPrototype("Bullet", func() (*bullet, error) { return &bullet{}, nil })
	reg := pool.New([]pool.Entry[*bullet]{{Tag: "bullet", Prototype: proto}},
		pool.WithLogger(zap.NewNop()))

	b, err := reg.SpawnByTag("bullet", pool.At(pool.Vec3{X: 1}, pool.Identity))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(b.tag, b.active, b.pose.Position.X)

	_ = reg.Release("bullet", b)
	again, _ := reg.SpawnByTag("bullet", pool.Pose{})
	fmt.Println("reused:", again == b)

	// Output:
	// bullet true 1
	// reused: true
}

func ExampleRegistry_SpawnByPrototype() {
	spark := pool.NewPrototype("Spark", func() (*bullet, error) { return &bullet{}, nil })
	reg := pool.New[*bullet](nil, pool.WithLogger(zap.NewNop()))

	_, err := reg.SpawnByPrototype(spark, pool.Pose{}, false)
	fmt.Println(err != nil)

	s, _ := reg.SpawnByPrototype(spark, pool.Pose{}, true)
	fmt.Println(s.tag, reg.Tags())

	// Output:
	// true
	// Spark [Spark]
}

func ExampleRegistry_Stats() {
	proto := pool.NewPrototype("Bullet", func() (*bullet, error) { return &bullet{}, nil })
	reg := pool.New([]pool.Entry[*bullet]{{Tag: "bullet", Prototype: proto}},
		pool.WithLogger(zap.NewNop()))

	_, _ = reg.Prewarm("bullet", 3)
	_, _ = reg.SpawnByTag("bullet", pool.Pose{})

	s, _ := reg.StatsFor("bullet")
	fmt.Printf("available=%d in_use=%d created=%d\n", s.Available, s.InUse, s.Created)

	// Output:
	// available=2 in_use=1 created=3
}

package collide

import "fmt"

// CollisionTag classifies a collidable for gameplay code. The world never
// branches on it.
type CollisionTag uint8

const (
	TagStaticSolid CollisionTag = iota
	TagPlayer
	TagTrigger
	TagProjectile

	// TagUser is the first value free for application tags.
	TagUser CollisionTag = 32
)

func (t CollisionTag) String() string {
	switch t {
	case TagStaticSolid:
		return "static-solid"
	case TagPlayer:
		return "player"
	case TagTrigger:
		return "trigger"
	case TagProjectile:
		return "projectile"
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// CollisionObject resolves a collision handle back to the game entity that
// registered it. It is immutable.
type CollisionObject struct {
	tag    CollisionTag
	entity Entity
}

func NewCollisionObject(tag CollisionTag, entity Entity) *CollisionObject {
	return &CollisionObject{tag: tag, entity: entity}
}

func (o *CollisionObject) Tag() CollisionTag { return o.tag }

func (o *CollisionObject) Entity() Entity { return o.entity }

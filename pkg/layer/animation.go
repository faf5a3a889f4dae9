package layer

import "time"

// Animation is driven once per frame against the layer it was added to.
// Run reports whether the animation has finished; Complete is called
// exactly once, after the final Run that returned true. Cancel is called
// if the animation is replaced via AddAnimation or removed via
// CancelAnimation before it finishes.
type Animation interface {
	Run(l *Layer, delta time.Duration) (done bool)
	Cancel()
	Complete()
}

type animationEntry struct {
	anim Animation
}

// AddAnimation installs anim under key, cancelling and replacing any
// animation already registered under that key, and schedules a
// next-frame callback via the root if one isn't already pending.
func (l *Layer) AddAnimation(key string, anim Animation) {
	if existing, ok := l.animations[key]; ok {
		existing.anim.Cancel()
	}
	if l.animations == nil {
		l.animations = make(map[string]animationEntry)
	}
	wasEmpty := len(l.animations) == 0
	l.animations[key] = animationEntry{anim: anim}
	if wasEmpty {
		l.scheduleAnimationFrame()
	}
}

// CancelAnimation removes and cancels the animation registered under key,
// if any.
func (l *Layer) CancelAnimation(key string) {
	if existing, ok := l.animations[key]; ok {
		delete(l.animations, key)
		existing.anim.Cancel()
	}
}

// HasActiveAnimations reports whether any animation is currently running
// on this layer.
func (l *Layer) HasActiveAnimations() bool { return len(l.animations) > 0 }

func (l *Layer) scheduleAnimationFrame() {
	if l.root == nil {
		return
	}
	last := nowFunc()
	var tick func()
	tick = func() {
		now := nowFunc()
		delta := now.Sub(last)
		last = now

		type kv struct {
			key  string
			anim Animation
		}
		snapshot := make([]kv, 0, len(l.animations))
		for k, v := range l.animations {
			snapshot = append(snapshot, kv{key: k, anim: v.anim})
		}

		for _, entry := range snapshot {
			if _, ok := l.animations[entry.key]; !ok {
				continue // removed mid-frame (e.g. by an earlier animation in this same snapshot)
			}
			if entry.anim.Run(l, delta) {
				delete(l.animations, entry.key)
				entry.anim.Complete()
			}
		}

		if len(l.animations) > 0 && l.root != nil {
			l.root.EnqueueEvent(tick, 0)
		}
	}
	l.root.EnqueueEvent(tick, 0)
}

// nowFunc is the animation clock, replaceable in tests for deterministic
// delta values.
var nowFunc = time.Now

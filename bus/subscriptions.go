package bus

import (
	"sort"

	"github.com/google/uuid"

	"github.com/GoCodeAlone/simbus/event"
)

// subscription binds one agent to one literal topic.
type subscription struct {
	id    string
	agent event.AgentID
	topic string

	// order makes subscribersOf deterministic: subscribers are visited in
	// subscription-creation order within a dispatch.
	order uint64

	// afterSeq is the global publish sequence at subscribe time. Entries
	// published at or before it are never delivered to this subscription, so
	// an agent cannot observe events that predate its subscription.
	afterSeq uint64

	cancelled bool
}

// subscriptionIndex maps topics to subscriber sets, with a reverse map for
// O(1) removal of all of an agent's subscriptions on deregistration. Owned by
// the dispatch goroutine; no locking.
type subscriptionIndex struct {
	byTopic map[string]map[event.AgentID]*subscription
	byAgent map[event.AgentID]map[string]*subscription
	nextOrd uint64
}

func newSubscriptionIndex() *subscriptionIndex {
	return &subscriptionIndex{
		byTopic: make(map[string]map[event.AgentID]*subscription),
		byAgent: make(map[event.AgentID]map[string]*subscription),
	}
}

// subscribe adds (agent, topic) to the index. Idempotent: resubscribing to an
// already-subscribed topic keeps the original subscription, including its
// afterSeq watermark.
func (ix *subscriptionIndex) subscribe(agent event.AgentID, topic string, afterSeq uint64) *subscription {
	if existing, ok := ix.byAgent[agent][topic]; ok {
		return existing
	}

	sub := &subscription{
		id:       uuid.New().String(),
		agent:    agent,
		topic:    topic,
		order:    ix.nextOrd,
		afterSeq: afterSeq,
	}
	ix.nextOrd++

	if ix.byTopic[topic] == nil {
		ix.byTopic[topic] = make(map[event.AgentID]*subscription)
	}
	ix.byTopic[topic][agent] = sub

	if ix.byAgent[agent] == nil {
		ix.byAgent[agent] = make(map[string]*subscription)
	}
	ix.byAgent[agent][topic] = sub

	return sub
}

// unsubscribe removes the (agent, topic) pair. No-op if absent.
func (ix *subscriptionIndex) unsubscribe(agent event.AgentID, topic string) {
	sub, ok := ix.byAgent[agent][topic]
	if !ok {
		return
	}
	sub.cancelled = true

	delete(ix.byAgent[agent], topic)
	if len(ix.byAgent[agent]) == 0 {
		delete(ix.byAgent, agent)
	}
	delete(ix.byTopic[topic], agent)
	if len(ix.byTopic[topic]) == 0 {
		delete(ix.byTopic, topic)
	}
}

// removeAll drops every subscription of the agent. Used on deregistration;
// marking the subscriptions cancelled also stops any in-flight fan-out from
// reaching the agent again.
func (ix *subscriptionIndex) removeAll(agent event.AgentID) {
	for topic, sub := range ix.byAgent[agent] {
		sub.cancelled = true
		delete(ix.byTopic[topic], agent)
		if len(ix.byTopic[topic]) == 0 {
			delete(ix.byTopic, topic)
		}
	}
	delete(ix.byAgent, agent)
}

// subscribersOf returns the subscriptions for the exact topic string, in
// subscription-creation order. The returned slice is freshly allocated; a
// handler mutating the index mid-fanout cannot corrupt the iteration.
func (ix *subscriptionIndex) subscribersOf(topic string) []*subscription {
	m := ix.byTopic[topic]
	if len(m) == 0 {
		return nil
	}
	subs := make([]*subscription, 0, len(m))
	for _, sub := range m {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].order < subs[j].order })
	return subs
}

// topics returns all topics that currently have at least one subscriber.
func (ix *subscriptionIndex) topics() []string {
	out := make([]string, 0, len(ix.byTopic))
	for topic := range ix.byTopic {
		out = append(out, topic)
	}
	sort.Strings(out)
	return out
}

// Package hub fans run outputs out to any number of subscribers.
//
// A Hub is created per run and passed to the engine as its output sink.
// Every emitted value is wrapped in a Message, tagged with a topic derived
// from its type, and delivered to each subscriber whose topic filter
// matches. Subscribers read from their own buffered channel, so a slow
// renderer never blocks a sibling subscriber beyond its buffer.
//
//	h := hub.New(ctx, config.DefaultHubConfig(), observer)
//	sub, _ := h.Subscribe("console", hub.TopicDecision, hub.TopicRisk)
//	go func() {
//	    for {
//	        msg, err := sub.Receive(ctx)
//	        if err != nil {
//	            return
//	        }
//	        render(msg)
//	    }
//	}()
//	result, err := eng.Run(ctx, c, h)
//	h.Shutdown(time.Second)
//
// Shutdown closes every subscriber channel; Receive then drains what is
// buffered and reports ErrClosed.
package hub

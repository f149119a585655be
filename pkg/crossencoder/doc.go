/*
Package crossencoder provides the scoring engine behind the rerank service:
given a query and a list of candidate passages, it produces one relevance
score per candidate, in candidate order.

The default provider loads a pretrained cross-encoder locally via
go-embedeverything. Remote providers cover deployments that point at a
Jina-compatible rerank API (vLLM, LocalAI, Jina AI) or grade relevance
through an OpenAI-compatible chat model. A deterministic local term-overlap
scorer and a mock are available for tests and dependency-free setups.

Usage:

	client, err := crossencoder.NewClient(crossencoder.ClientConfig{
		Provider: crossencoder.ProviderEmbedEverything,
		Config:   crossencoder.Config{Model: "cross-encoder/ms-marco-MiniLM-L-12-v2"},
	})
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	scores, err := client.Score(ctx, "cats", []string{"a cat sits", "a dog runs"})

All implementations guarantee len(scores) == len(candidates) and that
scores[i] pairs with candidates[i]. An empty candidate list yields an empty
score list without touching the model.
*/
package crossencoder

package acceptance_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Rule Engine classification", func() {
	// spec.md §8, scenario 1: ends_with + contains conjunction.
	It("matches a rule whose conditions are all satisfied", func() {
		rules := []rule{{
			Name:     "canada-sport",
			Priority: 10,
			Conditions: []condition{
				{Part: "host", Operator: "ends_with", Value: ".ca"},
				{Part: "path", Operator: "contains", Value: "sport"},
			},
			Result: "Canada Sport",
		}}
		out := runEngine(rules, []string{"https://shop.example.ca/category/sport/items"})
		Expect(out).To(Equal([]string{
			"https://shop.example.ca/category/sport/items -> Canada Sport",
		}))
	})

	// spec.md §8, scenario 2: equals on host and on the root path.
	It("matches equals conditions against host and root path", func() {
		rules := []rule{{
			Name:     "home",
			Priority: 5,
			Conditions: []condition{
				{Part: "host", Operator: "equals", Value: "example.com"},
				{Part: "path", Operator: "equals", Value: "/"},
			},
			Result: "Home",
		}}
		out := runEngine(rules, []string{"https://example.com/"})
		Expect(out).To(Equal([]string{"https://example.com/ -> Home"}))
	})

	// spec.md §8, scenario 3: all-negated rule must be verified directly,
	// not short-circuited by the candidate buffer.
	It("fails an all-negated rule whose negated condition matches", func() {
		rules := []rule{{
			Name:     "not-admin",
			Priority: 3,
			Conditions: []condition{
				{Part: "path", Operator: "starts_with", Value: "/admin", Negated: true},
			},
			Result: "NotAdmin",
		}}
		out := runEngine(rules, []string{"https://x.com/admin/panel"})
		Expect(out).To(Equal([]string{"https://x.com/admin/panel -> NO_MATCH"}))
	})

	// spec.md §8, scenario 4: the higher-priority rule does not match the
	// URL, so evaluation falls through to the lower-priority rule.
	It("falls through to a lower-priority rule when the higher-priority rule does not match", func() {
		rules := []rule{
			{
				Name:       "special",
				Priority:   10,
				Conditions: []condition{{Part: "host", Operator: "equals", Value: "special.com"}},
				Result:     "High",
			},
			{
				Name:       "dotcom",
				Priority:   1,
				Conditions: []condition{{Part: "host", Operator: "ends_with", Value: ".com"}},
				Result:     "Low",
			},
		}
		out := runEngine(rules, []string{"https://example.com/"})
		Expect(out).To(Equal([]string{"https://example.com/ -> Low"}))
	})

	// spec.md §8, scenario 5: tied priority breaks on definition index.
	It("breaks priority ties on earliest definition index", func() {
		rules := []rule{
			{
				Name:       "first",
				Priority:   5,
				Conditions: []condition{{Part: "host", Operator: "ends_with", Value: ".com"}},
				Result:     "First",
			},
			{
				Name:       "second",
				Priority:   5,
				Conditions: []condition{{Part: "host", Operator: "ends_with", Value: ".com"}},
				Result:     "Second",
			},
		}
		out := runEngine(rules, []string{"https://example.com/"})
		Expect(out).To(Equal([]string{"https://example.com/ -> First"}))
	})

	// spec.md §8, scenario 6: ends_with dispatched against the file part.
	It("matches ends_with against the last path segment", func() {
		rules := []rule{{
			Name:       "html",
			Priority:   1,
			Conditions: []condition{{Part: "file", Operator: "ends_with", Value: ".html"}},
			Result:     "HTML",
		}}
		out := runEngine(rules, []string{"https://x.com/a/b/index.html"})
		Expect(out).To(Equal([]string{"https://x.com/a/b/index.html -> HTML"}))
	})

	It("emits INVALID_URL for an unparseable line and continues the batch", func() {
		rules := []rule{{
			Name:       "dotcom",
			Priority:   1,
			Conditions: []condition{{Part: "host", Operator: "ends_with", Value: ".com"}},
			Result:     "Low",
		}}
		out := runEngine(rules, []string{"://not a url", "https://example.com/"})
		Expect(out).To(Equal([]string{
			"://not a url -> INVALID_URL",
			"https://example.com/ -> Low",
		}))
	})

	It("skips blank lines in the URL file", func() {
		rules := []rule{{
			Name:       "dotcom",
			Priority:   1,
			Conditions: []condition{{Part: "host", Operator: "ends_with", Value: ".com"}},
			Result:     "Low",
		}}
		out := runEngine(rules, []string{"", "https://example.com/", "", ""})
		Expect(out).To(Equal([]string{"https://example.com/ -> Low"}))
	})

	// spec.md §8 boundary: empty rule set.
	It("reports NO_MATCH for every URL when the rule set is empty", func() {
		out := runEngine([]rule{}, []string{"https://a.com/", "https://b.com/x"})
		Expect(out).To(Equal([]string{
			"https://a.com/ -> NO_MATCH",
			"https://b.com/x -> NO_MATCH",
		}))
	})

	// spec.md §8 boundary: an empty-value equals condition matches a URL
	// part that is absent (here the query).
	It("matches an empty-value equals condition against a URL with no query", func() {
		rules := []rule{{
			Name:       "empty-query",
			Priority:   1,
			Conditions: []condition{{Part: "query", Operator: "equals", Value: ""}},
			Result:     "NoQuery",
		}}
		out := runEngine(rules, []string{"https://example.com"})
		Expect(out).To(Equal([]string{"https://example.com -> NoQuery"}))
	})

	It("preserves input order across a larger batch run through the worker pool", func() {
		rules := []rule{
			{
				Name:       "sport",
				Priority:   10,
				Conditions: []condition{{Part: "path", Operator: "contains", Value: "sport"}},
				Result:     "Sport",
			},
			{
				Name:       "html",
				Priority:   5,
				Conditions: []condition{{Part: "file", Operator: "ends_with", Value: ".html"}},
				Result:     "HTML",
			},
		}
		urls := []string{
			"https://a.com/sport/1",
			"https://b.com/page/index.html",
			"https://c.com/nothing",
			"https://d.com/sport/2",
			"https://e.com/other/index.html",
		}
		out := runEngine(rules, urls)
		Expect(out).To(Equal([]string{
			"https://a.com/sport/1 -> Sport",
			"https://b.com/page/index.html -> HTML",
			"https://c.com/nothing -> NO_MATCH",
			"https://d.com/sport/2 -> Sport",
			"https://e.com/other/index.html -> HTML",
		}))
	})
})

// Package changelog turns GitHub release notes into display-ready markdown
// and HTML.
//
// [Transform] strips the HTML comments left by GitHub's release-notes
// generator, rewrites bare pull-request and compare URLs into labeled
// markdown links and turns @mentions into profile links. It is idempotent.
// [Render] converts the result to HTML, rendering each link according to
// its [Classify] kind: a mention card for profiles, a badge for pull
// requests and a plain external-link button for everything else.
package changelog

/*
Package dsl provides a fluent Go builder for gitquest acts.

It is an alternative to YAML content for tests, demos, and generated lessons. The
first step added becomes the entry unless Entry is called, and Build runs the same
structural validation as the content loaders.

	b := dsl.New(1).Title("The Empty Folder").Summary("You created a repository.")

	b.Dialog("mentor", "Mentor", "Let's track this folder.").Then("init")

	b.Terminal("init", `^git init$`).
		Success("Initialized empty Git repository in /quest/.git/").
		Hint("Try: git init").
		Then("done")

	b.Complete("done", "")

	act, err := b.Build()
*/
package dsl

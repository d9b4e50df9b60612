// Package chain describes filter chains: the ordered list of filters a run
// applies, as typed on the command line or stored in a recipe file.
//
// # Command Line
//
// [Parse] tokenizes the classic argument form:
//
//	imgfilter in.bmp out.bmp -crop 800 600 -gs -blur 1.5
//
// A token starting with "-" opens a new [Step]; every other token is a
// parameter of the most recent step. The input and output paths come first
// and must differ.
//
// # Registry
//
// Every supported filter has a [Descriptor] in a closed table. [Lookup]
// resolves a flag ("gs") or long name ("grayscale") to its descriptor, and
// [Build] turns validated steps into [filter.Filter] values:
//
//	steps, _ := chain.Tokenize([]string{"-sharp", "-edge", "0.3"})
//	filters, _ := chain.Build(steps, nil)
//
// Validation happens in full before anything runs, so a bad parameter in
// the last step is reported before the first filter touches the image.
//
// # Recipes
//
// [ParseRecipe] and [LoadRecipe] read TOML files listing steps:
//
//	[[filter]]
//	name = "crop"
//	params = [800, 600]
//
//	[[filter]]
//	name = "blur"
//	params = ["2.5"]
package chain

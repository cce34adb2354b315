package router_test

import (
	"fmt"

	"github.com/BrandonKowalski/pagehost/pkg/pagehost/router"
)

// Example shows a deep link followed by back navigation.
func Example() {
	pages := router.NewRegistry()
	for _, page := range []string{"Home", "Library", "Detail"} {
		pages.Register(page, "", "")
	}

	svc, err := router.NewService("main", router.Options{Registry: pages})
	if err != nil {
		panic(err)
	}
	defer svc.Close()

	res := svc.Navigate("Home/Library?sort=name/Detail", router.NewParameters().Set("id", "42"), nil)
	entry, params, _ := svc.Current()
	fmt.Println(res.Success, entry.View, params)

	svc.GoBack(nil, nil)
	entry, params, _ = svc.Current()
	fmt.Println(entry.View, params, svc.CanGoBack(), svc.CanGoForward())

	svc.GoForward(nil)
	res = svc.GoForward(nil)
	fmt.Println(res.Kind)
	// Output:
	// true Detail id=42
	// Library sort=name true true
	// no_history
}

// ExampleService_NavigateAsync shows navigation from code that must not
// block, such as a view-model hook.
func ExampleService_NavigateAsync() {
	pages := router.NewRegistry()
	pages.Register("Home", "", "")
	pages.Register("Settings", "", "")

	svc, _ := router.NewService("main", router.Options{Registry: pages})
	defer svc.Close()

	svc.OnNavigated(func(e router.NavigatedEvent) {
		fmt.Println("navigated to", e.Entry.View, "mode", e.Mode)
	})

	first := svc.NavigateAsync("Home", nil, nil)
	second := svc.NavigateAsync("Settings", nil, nil)
	fmt.Println((<-first).Success, (<-second).Success)
	// Output:
	// navigated to Home mode new
	// navigated to Settings mode new
	// true true
}

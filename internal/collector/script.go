package collector

// BindingName - имя CDP-биндинга, через который страница шлет события
const BindingName = "__vitalsReport"

// Script возвращает скрипт наблюдателей. Он ставится в страницу до начала
// навигации, чтобы подписки были активны раньше первых paint/longtask
// событий. Каждое наблюдение уходит отдельным сообщением через биндинг;
// регистрация недоступного типа наблюдателя молча пропускается.
func Script() string {
	return observerScript
}

const observerScript = `(() => {
  const report = (kind, payload) => {
    try {
      window.` + BindingName + `(JSON.stringify(Object.assign({kind}, payload)));
    } catch (e) {}
  };

  const observe = (type, cb) => {
    try {
      const po = new PerformanceObserver((list) => list.getEntries().forEach(cb));
      po.observe({type, buffered: true});
    } catch (e) {}
  };

  observe('paint', (e) => {
    report('paint', {name: e.name, startTime: e.startTime});
    if (e.name === 'first-contentful-paint') {
      report('web-vital', {name: 'FCP', value: e.startTime, delta: e.startTime});
    }
  });

  observe('longtask', (e) => {
    report('longtask', {startTime: e.startTime, duration: e.duration});
  });

  let lcp = null;
  observe('largest-contentful-paint', (e) => {
    lcp = e.renderTime || e.startTime;
    report('lcp-candidate', {startTime: e.startTime, renderTime: e.renderTime, size: e.size});
  });

  let cls = 0;
  observe('layout-shift', (e) => {
    if (e.hadRecentInput) return;
    cls += e.value;
    report('web-vital', {name: 'CLS', value: cls, delta: e.value});
  });

  addEventListener('load', () => {
    setTimeout(() => {
      const nav = performance.getEntriesByType('navigation')[0];
      if (!nav) return;
      report('web-vital', {name: 'TTFB', value: nav.responseStart, delta: nav.responseStart});
      report('lifecycle', {name: 'loadEventEnd', startTime: nav.loadEventEnd});
    }, 0);
  });

  const finalizeLCP = () => {
    if (lcp !== null) {
      report('web-vital', {name: 'LCP', value: lcp, delta: lcp});
    }
  };
  addEventListener('click', finalizeLCP, {capture: true});
  addEventListener('keydown', finalizeLCP, {capture: true});
  document.addEventListener('visibilitychange', finalizeLCP);
})();`
